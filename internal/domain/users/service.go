package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gatherhall/server/internal/auth"
	"github.com/gatherhall/server/internal/domain/ids"
	"github.com/gatherhall/server/internal/sanitize"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrForbidden is returned when a non-admin attempts an administrative
// user operation.
var ErrForbidden = errors.New("admin role required")

// Service handles account operations.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	validate *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger.With().Str("component", "users").Logger(),
		validate: validator.New(),
	}
}

type RegisterParams struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required,min=1,max=255"`
	Password string `validate:"required,min=8,max=72"`
}

// Register creates a new account with the default role. Identity is
// immutable after creation; only the role may change, via SetRole.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.Name = sanitize.Text(strings.TrimSpace(params.Name))

	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("validate registration: %w", err)
	}

	existing, err := s.repo.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint user id: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		ID:           id,
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
		Role:         DefaultRole,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Authenticate verifies a credential pair. The failure shape is identical
// for unknown email and wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID resolves a user, typically for request actor lookup.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	if err := ids.ValidateULID(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// SetRole changes a user's role. Admin only.
func (s *Service) SetRole(ctx context.Context, actor *User, userID string, role Role) (*User, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Str("changed_by", actor.ID).
		Msg("user role changed")
	return user, nil
}
