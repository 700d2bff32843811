package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/stockchecker/stockchecker/internal/logging"
	"github.com/stockchecker/stockchecker/internal/user"
)

// UserStore is the persistence surface the auth service needs. Implemented
// by user.Repository; tests inject an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, email, hashedPassword string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Service orchestrates signup, login, token validation and logout.
// All collaborators are injected at construction.
type Service struct {
	users          UserStore
	hasher         *Hasher
	tokens         TokenService
	revocations    *RevocationRegistry
	logger         *logging.Logger
	accessTokenTTL time.Duration
}

func NewService(
	users UserStore,
	hasher *Hasher,
	tokens TokenService,
	revocations *RevocationRegistry,
	logger *logging.Logger,
	accessTokenTTL time.Duration,
) *Service {
	return &Service{
		users:          users,
		hasher:         hasher,
		tokens:         tokens,
		revocations:    revocations,
		logger:         logger,
		accessTokenTTL: accessTokenTTL,
	}
}

// Signup registers a new user. The password policy is enforced here, at
// signup time only; login never re-validates it.
func (s *Service) Signup(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" || len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, hashed)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login authenticates credentials and returns a fresh access token.
// Unknown email and wrong password produce the identical error so the
// response never reveals whether an account exists.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, existing.HashedPassword) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.CreateToken(existing.Email, s.accessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	return token, nil
}

// Logout revokes the exact token string. It succeeds for any non-empty
// token, including expired or already-revoked ones; revoking an expired
// token is harmless.
func (s *Service) Logout(token string) error {
	if token == "" {
		return ErrMissingCredentials
	}
	s.revocations.Revoke(token)
	s.logger.Debug("token revoked", "revoked_total", s.revocations.Len())
	return nil
}

// Authenticate runs the per-request validation pipeline on a raw bearer
// token, short-circuiting on the first failure: cryptographic validity,
// then revocation, then subject lookup.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*user.User, error) {
	if rawToken == "" {
		return nil, ErrMissingCredentials
	}

	claims, err := s.tokens.VerifyToken(rawToken)
	if err != nil {
		return nil, err
	}

	if s.revocations.IsRevoked(rawToken) {
		return nil, ErrRevokedToken
	}

	current, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return current, nil
}
