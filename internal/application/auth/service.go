package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/domain"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/code"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/id"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/validate"
)

// codeTTL is how long an issued code stays valid.
const codeTTL = 10 * time.Minute

// notifyTimeout bounds the outbound email call so a slow provider cannot
// hold the user-facing request open.
const notifyTimeout = 5 * time.Second

type requestCodeInput struct {
	Email string `validate:"required,email"`
}

type verifyCodeInput struct {
	Email string `validate:"required"`
	Code  string `validate:"required"`
}

// UserRepository is the user store the service requires.
type UserRepository interface {
	// Upsert inserts a user for the given normalized email or returns the
	// existing one. Atomic under concurrent calls for the same email.
	Upsert(ctx context.Context, email string) (*domain.User, error)
}

// CodeRepository is the auth-code store the service requires.
type CodeRepository interface {
	Create(ctx context.Context, c *domain.AuthCode) error
	// FindValid returns the newest unused, unexpired code matching the
	// email+code pair, or domain.ErrNotFound.
	FindValid(ctx context.Context, email, code string) (*domain.AuthCode, error)
	// Consume flips used=false to true and reports whether this call won
	// the transition. The update must be a single conditional write.
	Consume(ctx context.Context, codeID string) (bool, error)
}

// Notifier delivers a login code to the user out of band.
type Notifier interface {
	SendCode(ctx context.Context, email, codeValue string) error
}

// Service implements the two-action login protocol.
type Service interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, codeValue string) (*domain.User, error)
}

type service struct {
	userRepo UserRepository
	codeRepo CodeRepository
	notifier Notifier
	gen      *code.Generator
}

func NewService(userRepo UserRepository, codeRepo CodeRepository, notifier Notifier, gen *code.Generator) Service {
	return &service{
		userRepo: userRepo,
		codeRepo: codeRepo,
		notifier: notifier,
		gen:      gen,
	}
}

// RequestCode issues a fresh code for the email and emails it to the user.
// The code value is never returned to the caller; delivery is strictly
// out of band.
func (s *service) RequestCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validate.Struct(&requestCodeInput{Email: email}); err != nil {
		return fmt.Errorf("invalid email: %w", domain.ErrBadRequest)
	}

	u, err := s.userRepo.Upsert(ctx, email)
	if err != nil {
		return err
	}

	otp, err := s.gen.Generate()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	ac := &domain.AuthCode{
		CodeID:    id.New(),
		UserID:    u.UserID,
		Code:      otp,
		CreatedAt: now,
		ExpiresAt: now.Add(codeTTL),
	}
	if err := s.codeRepo.Create(ctx, ac); err != nil {
		return err
	}

	// Delivery failure must not fail the request: the code is already
	// persisted and the user can simply ask for another one. It still has
	// to be visible in the logs rather than swallowed.
	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.notifier.SendCode(nctx, email, otp); err != nil {
		slog.Warn("failed to send login code", "email", email, "err", err)
	}
	return nil
}

// VerifyCode consumes a previously issued code and returns the
// authenticated user. A consumed, expired or unknown code is an
// authentication failure, not an error.
func (s *service) VerifyCode(ctx context.Context, email, codeValue string) (*domain.User, error) {
	email = normalizeEmail(email)
	codeValue = strings.TrimSpace(codeValue)
	if err := validate.Struct(&verifyCodeInput{Email: email, Code: codeValue}); err != nil {
		return nil, fmt.Errorf("email and code required: %w", domain.ErrBadRequest)
	}

	ac, err := s.codeRepo.FindValid(ctx, email, codeValue)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	won, err := s.codeRepo.Consume(ctx, ac.CodeID)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race against a concurrent verification of the same code.
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}

	return &domain.User{UserID: ac.UserID, Email: email}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
