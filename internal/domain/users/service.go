package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hackpoint/server/internal/auth"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
)

const localProvider = "local"

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	AuthProvider string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	AuthProvider string
	Role         string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, id int64, name, email string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Service handles account management.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

type SignupParams struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=128"`
	Role     string `validate:"omitempty,oneof=participant organizer judge"`
}

// Signup registers a new local account. Role defaults to participant.
func (s *Service) Signup(ctx context.Context, params SignupParams) (User, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if err := s.validate.Struct(params); err != nil {
		return User{}, fmt.Errorf("%w: %s", ErrInvalidRole, err)
	}
	role := params.Role
	if role == "" {
		role = string(auth.RoleParticipant)
	}

	existing, err := s.repo.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if err == nil && existing.ID != 0 {
		return User{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return User{}, err
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		AuthProvider: localProvider,
		Role:         role,
	})
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user signed up")
	return user, nil
}

// Login verifies credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

type UpdateProfileParams struct {
	Name  string `validate:"required,min=2,max=100"`
	Email string `validate:"required,email"`
}

// UpdateProfile changes name and email; the new email must be free.
func (s *Service) UpdateProfile(ctx context.Context, id int64, params UpdateProfileParams) (User, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if err := s.validate.Struct(params); err != nil {
		return User{}, fmt.Errorf("%w: %s", ErrInvalidRole, err)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if params.Email != user.Email {
		other, err := s.repo.GetByEmail(ctx, params.Email)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return User{}, fmt.Errorf("check email: %w", err)
		}
		if err == nil && other.ID != id {
			return User{}, ErrEmailTaken
		}
	}

	if err := s.repo.Update(ctx, id, params.Name, params.Email); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}

	user.Name = params.Name
	user.Email = params.Email
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if len(next) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := auth.VerifyPassword(user.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info().Int64("user_id", id).Msg("password changed")
	return nil
}
