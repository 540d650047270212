package admins

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/auth"
	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	args := m.Called(ctx, admin)
	admin.ID = 1
	return args.Error(0)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Admin), args.Error(1)
}

func (m *MockAdminRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAdminRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newService(repo *MockAdminRepository) *AdminService {
	return NewAdminService(repo, "test-secret", time.Hour, bcrypt.MinCost)
}

func storedAdmin(t *testing.T, password string) *domain.Admin {
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.Admin{ID: 3, Name: "Root", Email: "root@example.com", PasswordHash: hash}
}

func TestAdminService_Login_Success(t *testing.T) {
	repo := &MockAdminRepository{}
	service := newService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "root@example.com").Return(storedAdmin(t, "correct-horse"), nil).Once()

	token, err := service.Login(ctx, LoginInput{Email: "root@example.com", Password: "correct-horse"})

	require.NoError(t, err)
	claims, err := auth.ParseToken("test-secret", token.Token)
	require.NoError(t, err)
	id, _ := claims.AdminID()
	assert.Equal(t, int64(3), id)
	assert.Equal(t, "root@example.com", claims.Email)
}

func TestAdminService_Login_BadCredentials(t *testing.T) {
	repo := &MockAdminRepository{}
	service := newService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "root@example.com").Return(storedAdmin(t, "correct-horse"), nil).Once()
	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrNotFound).Once()

	_, err := service.Login(ctx, LoginInput{Email: "root@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = service.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAdminService_Create(t *testing.T) {
	repo := &MockAdminRepository{}
	service := newService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Admin")).Return(nil).Once()

	admin, err := service.Create(ctx, CreateAdminInput{Name: "Kim", Email: " Kim@Example.com ", Password: "longenough"})

	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", admin.Email)
	assert.True(t, auth.VerifyPassword(admin.PasswordHash, "longenough"))
}

func TestAdminService_Create_Rejects(t *testing.T) {
	repo := &MockAdminRepository{}
	service := newService(repo)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateAdminInput{Name: "Kim", Email: "kim@example.com", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "password must be at least 8")

	repo.On("Create", ctx, mock.Anything).Return(domain.ErrConflict).Once()
	_, err = service.Create(ctx, CreateAdminInput{Name: "Kim", Email: "kim@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAdminService_Delete(t *testing.T) {
	repo := &MockAdminRepository{}
	service := newService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, service.Delete(ctx, 3, 3), domain.ErrValidation)

	repo.On("Delete", ctx, int64(4)).Return(nil).Once()
	assert.NoError(t, service.Delete(ctx, 3, 4))
	repo.AssertExpectations(t)
}

func TestAdminService_EnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when empty", func(t *testing.T) {
		repo := &MockAdminRepository{}
		repo.On("Count", ctx).Return(0, nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(a *domain.Admin) bool {
			return a.Email == "boot@example.com" && a.Name == "admin"
		})).Return(nil).Once()

		require.NoError(t, newService(repo).EnsureBootstrapAdmin(ctx, "", "boot@example.com", "bootstrap-pw"))
		repo.AssertExpectations(t)
	})

	t.Run("skips when admins exist", func(t *testing.T) {
		repo := &MockAdminRepository{}
		repo.On("Count", ctx).Return(2, nil).Once()

		require.NoError(t, newService(repo).EnsureBootstrapAdmin(ctx, "", "boot@example.com", "bootstrap-pw"))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("skips without credentials", func(t *testing.T) {
		repo := &MockAdminRepository{}
		repo.On("Count", ctx).Return(0, nil).Once()

		require.NoError(t, newService(repo).EnsureBootstrapAdmin(ctx, "", "", ""))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
