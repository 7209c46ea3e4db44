package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/skinscan/api/internal/core/domain"
	"github.com/skinscan/api/internal/core/ports"
)

// maxPasswordBytes is bcrypt's input limit. Longer passwords are truncated
// before hashing and comparing, so records written by bcryptjs still verify.
const maxPasswordBytes = 72

// AuthService implements registration and login.
type AuthService struct {
	repo      ports.AuthRepository
	cost      int
	dummyHash []byte
	logger    zerolog.Logger
}

// NewAuthService builds an AuthService hashing with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewAuthService(repo ports.AuthRepository, cost int, logger zerolog.Logger) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	// Compared against on unknown emails so both login failure paths pay for
	// one bcrypt comparison.
	dummy, err := bcrypt.GenerateFromPassword([]byte("skinscan-dummy-password"), cost)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to prepare dummy password hash")
	}

	return &AuthService{repo: repo, cost: cost, dummyHash: dummy, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, domain.MinPasswordLength)
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	// The unique index still decides when two registrations race past the
	// lookup above.
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login verifies the credentials. Unknown emails and wrong passwords both
// yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, passwordBytes(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
