package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"procurement/internal/config"
)

// BotVerification is the outcome reported by the verification provider.
type BotVerification struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	ErrorCodes  []string `json:"error-codes"`
}

// BotVerifier validates a client-supplied anti-automation payload.
type BotVerifier interface {
	VerifyPayload(ctx context.Context, payload string) (BotVerification, error)
}

type reCaptchaVerifier struct {
	client    *http.Client
	endpoint  string
	secretKey string
	logger    *zap.Logger
}

// NewReCaptchaVerifier builds the production verifier calling the
// reCAPTCHA siteverify endpoint.
func NewReCaptchaVerifier(cfg config.Config, logger *zap.Logger) BotVerifier {
	return &reCaptchaVerifier{
		client:    &http.Client{Timeout: 10 * time.Second},
		endpoint:  cfg.RecaptchaEndpoint,
		secretKey: cfg.RecaptchaServerKey,
		logger:    logger,
	}
}

func (v *reCaptchaVerifier) VerifyPayload(ctx context.Context, payload string) (BotVerification, error) {
	form := url.Values{
		"secret":   {v.secretKey},
		"response": {payload},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return BotVerification{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return BotVerification{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BotVerification{}, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var result BotVerification
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return BotVerification{}, err
	}

	if !result.Success {
		v.logger.Info("bot verification failed", zap.Strings("error_codes", result.ErrorCodes))
	}
	return result, nil
}
