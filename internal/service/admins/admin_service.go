package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/auth"
	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/repository"
	"github.com/Domenick1991/cinemabooking/internal/validation"
)

type AdminUseCase interface {
	Login(ctx context.Context, input LoginInput) (*auth.AccessToken, error)
	Create(ctx context.Context, input CreateAdminInput) (*domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
	Delete(ctx context.Context, actorID, id int64) error
	EnsureBootstrapAdmin(ctx context.Context, name, email, password string) error
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateAdminInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AdminService struct {
	repo       repository.AdminRepository
	jwtSecret  string
	accessTTL  time.Duration
	bcryptCost int
}

func NewAdminService(repo repository.AdminRepository, jwtSecret string, accessTTL time.Duration, bcryptCost int) *AdminService {
	return &AdminService{repo: repo, jwtSecret: jwtSecret, accessTTL: accessTTL, bcryptCost: bcryptCost}
}

// Login returns domain.ErrUnauthorized for both an unknown email and a wrong
// password.
func (s *AdminService) Login(ctx context.Context, input LoginInput) (*auth.AccessToken, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	admin, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !auth.VerifyPassword(admin.PasswordHash, input.Password) {
		return nil, domain.ErrUnauthorized
	}

	token, err := auth.NewAccessToken(s.jwtSecret, admin.ID, admin.Email, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *AdminService) Create(ctx context.Context, input CreateAdminInput) (*domain.Admin, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	admin := &domain.Admin{Name: input.Name, Email: input.Email, PasswordHash: hash}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: email %s is already registered", domain.ErrConflict, input.Email)
		}
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) List(ctx context.Context) ([]domain.Admin, error) {
	return s.repo.List(ctx)
}

// Delete removes an admin account. actorID is the caller; nobody can delete
// their own account.
func (s *AdminService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

// EnsureBootstrapAdmin creates the first admin when the table is empty.
func (s *AdminService) EnsureBootstrapAdmin(ctx context.Context, name, email, password string) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if email == "" || password == "" {
		logger.Warn("no admin accounts and no bootstrap credentials configured")
		return nil
	}
	if name == "" {
		name = "admin"
	}

	admin, err := s.Create(ctx, CreateAdminInput{Name: name, Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	logger.Info("bootstrap admin created", "email", admin.Email)
	return nil
}

var _ AdminUseCase = (*AdminService)(nil)
