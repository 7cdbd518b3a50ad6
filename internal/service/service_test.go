package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"procurement/internal/config"
	"procurement/internal/database"
	"procurement/internal/identity"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/websocket"
	"procurement/pkg/apperr"
)

// newTestDB opens a fresh in-memory database, migrated and seeded the
// same way the real connection is. Each test gets its own named
// memory store so parallel packages cannot bleed into each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role, status string) *model.User {
	t.Helper()
	u := &model.User{Email: email, FirstName: "Test", LastName: "User", RoleID: role, UserStatusID: status}
	require.NoError(t, db.Create(u).Error)
	return u
}

func asIdentity(email string, roles ...string) identity.Identity {
	return identity.Identity{Email: email, Roles: roles}
}

func newUserSvcForTest(db *gorm.DB, verifier BotVerifier, inviter DirectoryInviter, scheme string) UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewRefDataRepository(db),
		repository.NewTransactionManager(db),
		verifier,
		inviter,
		config.Config{AuthScheme: scheme},
		zap.NewNop(),
	)
}

func newRequestSvcForTest(db *gorm.DB, notifier Notifier) RequestService {
	return NewRequestService(
		repository.NewRequestRepository(db),
		repository.NewProductRepository(db),
		repository.NewUserRepository(db),
		repository.NewRefDataRepository(db),
		repository.NewTransactionManager(db),
		notifier,
		zap.NewNop(),
	)
}

// requireAppErr asserts err is the given failure kind with the given
// HTTP status and hands the error back for further checks.
func requireAppErr(t *testing.T, err error, def apperr.Def, status int) *apperr.Error {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	require.True(t, def.Is(err), "expected code %d %q, got %d %q", def.Code, def.Text, e.Code, e.Detail)
	require.Equal(t, status, e.Status)
	return e
}

// requireOneCurrent asserts the chain invariant: exactly one revision
// of the given chain carries the current flag.
func requireOneCurrent(t *testing.T, db *gorm.DB, refNo uuid.UUID) {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Request{}).
		Where("ref_no = ? AND is_current = 1", refNo).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func countRevisions(t *testing.T, db *gorm.DB, refNo uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Request{}).Where("ref_no = ?", refNo).Count(&n).Error)
	return n
}

// --- fakes ---

type fakeVerifier struct {
	result BotVerification
	err    error
	calls  int
}

func (f *fakeVerifier) VerifyPayload(ctx context.Context, payload string) (BotVerification, error) {
	f.calls++
	if f.err != nil {
		return BotVerification{}, f.err
	}
	return f.result, nil
}

type fakeInviter struct {
	result  string
	err     error
	invited []string
}

func (f *fakeInviter) InviteUser(ctx context.Context, email string) (string, error) {
	f.invited = append(f.invited, email)
	if f.err != nil {
		return InviteError, f.err
	}
	return f.result, nil
}

type fakeNotifier struct {
	events []websocket.Event
}

func (f *fakeNotifier) Notify(ev websocket.Event) {
	f.events = append(f.events, ev)
}
