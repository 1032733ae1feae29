package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openlearn/lms-api/internal/model"
	apperrors "github.com/openlearn/lms-api/pkg/errors"
	"github.com/openlearn/lms-api/pkg/ratelimit"
)

type fakeUserRepo struct {
	users map[string]*model.User // keyed by email
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, _ []uuid.UUID) ([]*model.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListActive(_ context.Context, _ *model.AccountType) ([]*model.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeTokenRepo struct {
	tokens map[string]uuid.UUID
}

func (r *fakeTokenRepo) StoreResetToken(_ context.Context, userID uuid.UUID, token string, _ time.Time) error {
	r.tokens[token] = userID
	return nil
}

func (r *fakeTokenRepo) ValidateResetToken(_ context.Context, token string) (uuid.UUID, error) {
	id, ok := r.tokens[token]
	if !ok {
		return uuid.Nil, sql.ErrNoRows
	}
	return id, nil
}

func (r *fakeTokenRepo) InvalidateResetToken(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

type fakeEmailService struct {
	sent []string // recipient addresses
}

func (s *fakeEmailService) SendPasswordReset(_ context.Context, email string, _ string) error {
	s.sent = append(s.sent, email)
	return nil
}

func (s *fakeEmailService) SendCustom(_ context.Context, to string, _ string, _ string) error {
	s.sent = append(s.sent, to)
	return nil
}

type failingStore struct{}

func (failingStore) Incr(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, errors.New("store unavailable")
}

func newTestAuth(maxAttempts int64) (*Service, *fakeUserRepo, *fakeTokenRepo, *fakeEmailService) {
	users := &fakeUserRepo{users: make(map[string]*model.User)}
	tokens := &fakeTokenRepo{tokens: make(map[string]uuid.UUID)}
	mailer := &fakeEmailService{}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), maxAttempts, time.Minute)
	return NewService(users, tokens, mailer, limiter), users, tokens, mailer
}

func TestRequestPasswordReset(t *testing.T) {
	svc, users, tokens, mailer := newTestAuth(5)
	users.users["alice@example.com"] = &model.User{ID: uuid.New(), Email: "alice@example.com"}

	err := svc.RequestPasswordReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, mailer.sent)
	assert.Len(t, tokens.tokens, 1)
}

func TestRequestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, tokens, mailer := newTestAuth(5)

	// Unknown addresses succeed without sending anything, so the
	// endpoint cannot confirm which emails have accounts.
	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, tokens.tokens)
}

func TestRequestPasswordResetRateLimited(t *testing.T) {
	svc, users, _, mailer := newTestAuth(2)
	users.users["bob@example.com"] = &model.User{ID: uuid.New(), Email: "bob@example.com"}

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "bob@example.com"))
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "bob@example.com"))

	err := svc.RequestPasswordReset(context.Background(), "bob@example.com")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrRateLimited))
	assert.Len(t, mailer.sent, 2)
}

func TestRequestPasswordResetFailsOpenOnBrokenStore(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{
		"carol@example.com": {ID: uuid.New(), Email: "carol@example.com"},
	}}
	tokens := &fakeTokenRepo{tokens: make(map[string]uuid.UUID)}
	mailer := &fakeEmailService{}
	limiter := ratelimit.NewLimiter(failingStore{}, 1, time.Minute)
	svc := NewService(users, tokens, mailer, limiter)

	err := svc.RequestPasswordReset(context.Background(), "carol@example.com")
	require.NoError(t, err)
	assert.Len(t, mailer.sent, 1)
}

func TestConfirmPasswordReset(t *testing.T) {
	svc, users, tokens, _ := newTestAuth(5)
	user := &model.User{ID: uuid.New(), Email: "dave@example.com"}
	users.users[user.Email] = user
	tokens.tokens["reset-token"] = user.ID

	err := svc.ConfirmPasswordReset(context.Background(), "reset-token", "correct horse battery")
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")))
	assert.Empty(t, tokens.tokens, "token invalidated after use")
}

func TestConfirmPasswordResetRejectsShortPassword(t *testing.T) {
	svc, _, _, _ := newTestAuth(5)

	err := svc.ConfirmPasswordReset(context.Background(), "any", "short")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}

func TestConfirmPasswordResetRejectsUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestAuth(5)

	err := svc.ConfirmPasswordReset(context.Background(), "bogus", "long enough password")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}
