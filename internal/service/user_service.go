package service

import (
	"context"
	"errors"
	"fmt"

	"stayfinder/internal/auth"
	"stayfinder/internal/config"
	"stayfinder/internal/database"
	"stayfinder/internal/domain"
	"stayfinder/internal/models"

	"github.com/rs/zerolog"
)

// UserService handles registration, login and the admin seed.
type UserService struct {
	repo       domain.Repository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zerolog.Logger
}

func NewUserService(repo domain.Repository, tokens *auth.TokenManager, bcryptCost int, logger *zerolog.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = models.DefaultBcryptCost
	}
	return &UserService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// RegisterInput carries the sign-up fields.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a new account. Only the user and seller roles can be
// self-registered; admins are seeded.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if in.Role != models.RoleUser && in.Role != models.RoleSeller {
		return nil, fmt.Errorf("%w: invalid role selected", ErrValidation)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetUser loads a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// EnsureAdmin creates the configured administrator account if it does not
// exist yet. A no-op when no seed email is configured.
func (s *UserService) EnsureAdmin(ctx context.Context, seed config.AdminSeedConfig) error {
	if seed.Email == "" {
		return nil
	}

	_, err := s.repo.GetUserByEmail(ctx, seed.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return err
	}

	if seed.Password == "" {
		return fmt.Errorf("admin seed for %s has no password", seed.Email)
	}

	hash, err := auth.HashPassword(seed.Password, s.bcryptCost)
	if err != nil {
		return err
	}

	name := seed.Name
	if name == "" {
		name = "Admin"
	}
	admin := &models.User{
		Name:         name,
		Email:        seed.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		return err
	}

	s.logger.Info().Str("email", seed.Email).Msg("admin account created")
	return nil
}
