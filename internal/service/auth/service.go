package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/openlearn/lms-api/internal/email"
	"github.com/openlearn/lms-api/internal/repository"
	apperrors "github.com/openlearn/lms-api/pkg/errors"
	"github.com/openlearn/lms-api/pkg/ratelimit"
)

const (
	bcryptCost        = 12
	resetTokenExpiry  = 1 * time.Hour
	minPasswordLength = 8
)

type Service struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	emailSvc email.Service
	limiter  *ratelimit.Limiter
}

func NewService(users repository.UserRepository, tokens repository.TokenRepository, emailSvc email.Service, limiter *ratelimit.Limiter) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		emailSvc: emailSvc,
		limiter:  limiter,
	}
}

// RequestPasswordReset issues a reset token and mails it. Requests
// are limited per address through the injected store; unknown
// addresses report success so the endpoint cannot be used to probe
// which emails have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	allowed, err := s.limiter.Allow(ctx, "password-reset:"+emailAddr)
	if err != nil {
		// A broken limiter backend should not block resets.
		log.Error().Err(err).Msg("rate limit store unavailable, allowing request")
		allowed = true
	}
	if !allowed {
		return apperrors.NewRateLimited("too many password reset requests, try again later")
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil // Don't reveal if email exists
	}

	token := uuid.New().String()
	if err := s.tokens.StoreResetToken(ctx, user.ID, token, time.Now().Add(resetTokenExpiry)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.emailSvc.SendPasswordReset(ctx, emailAddr, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidation(fmt.Sprintf("password must be at least %d characters", minPasswordLength), nil)
	}

	userID, err := s.tokens.ValidateResetToken(ctx, token)
	if err != nil {
		return apperrors.NewValidation("invalid or expired reset token", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokens.InvalidateResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	return nil
}
