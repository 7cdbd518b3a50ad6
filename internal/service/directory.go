package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"procurement/internal/config"
)

// Invitation outcomes reported by the directory service.
const (
	InvitePendingAcceptance = "PendingAcceptance"
	InviteCompleted         = "Completed"
	InviteInProgress        = "InProgress"
	InviteError             = "Error"
)

// DirectoryInviter invites an external identity into the
// organization's directory.
type DirectoryInviter interface {
	InviteUser(ctx context.Context, email string) (string, error)
}

type graphInviter struct {
	client      *http.Client
	endpoint    string
	token       string
	redirectURL string
	logger      *zap.Logger
}

// NewGraphInviter builds the production inviter posting B2B guest
// invitations to the directory's REST endpoint.
func NewGraphInviter(cfg config.Config, logger *zap.Logger) DirectoryInviter {
	return &graphInviter{
		client:      &http.Client{Timeout: 15 * time.Second},
		endpoint:    cfg.DirectoryEndpoint,
		token:       cfg.DirectoryToken,
		redirectURL: cfg.InviteRedirectURL,
		logger:      logger,
	}
}

func (g *graphInviter) InviteUser(ctx context.Context, email string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"invitedUserEmailAddress": email,
		"inviteRedirectUrl":       g.redirectURL,
	})
	if err != nil {
		return InviteError, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/invitations", bytes.NewReader(body))
	if err != nil {
		return InviteError, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("directory invitation call failed", zap.String("email", email), zap.Error(err))
		return InviteError, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn("directory invitation rejected", zap.String("email", email), zap.Int("status", resp.StatusCode))
		return InviteError, nil
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return InviteError, nil
	}
	if result.Status == "" {
		return InviteError, nil
	}
	return result.Status, nil
}
