package api

import (
	"context"

	"github.com/Domenick1991/cinemabooking/internal/auth"
	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/service/admins"
	"github.com/Domenick1991/cinemabooking/internal/service/booking"
	"github.com/Domenick1991/cinemabooking/internal/service/buddy"
	"github.com/Domenick1991/cinemabooking/internal/service/foods"
	"github.com/Domenick1991/cinemabooking/internal/service/movies"
	"github.com/Domenick1991/cinemabooking/internal/service/orders"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, token string) (*domain.Booking, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) List(ctx context.Context, movieID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, movieID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockBookingUseCase) TicketQR(ctx context.Context, token string) ([]byte, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockMovieUseCase struct {
	mock.Mock
}

func (m *MockMovieUseCase) Create(ctx context.Context, input movies.CreateMovieInput) (*domain.Movie, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

func (m *MockMovieUseCase) Update(ctx context.Context, id int64, input movies.UpdateMovieInput) (*domain.Movie, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

func (m *MockMovieUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMovieUseCase) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

func (m *MockMovieUseCase) GetBySlug(ctx context.Context, slug string) (*domain.Movie, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

func (m *MockMovieUseCase) List(ctx context.Context) ([]domain.Movie, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Movie), args.Error(1)
}

func (m *MockMovieUseCase) ListByStatus(ctx context.Context, status string) ([]domain.Movie, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movie), args.Error(1)
}

func (m *MockMovieUseCase) RefreshStatuses(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockFoodUseCase struct {
	mock.Mock
}

func (m *MockFoodUseCase) Create(ctx context.Context, input foods.CreateFoodInput) (*domain.Food, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Food), args.Error(1)
}

func (m *MockFoodUseCase) Update(ctx context.Context, id int64, input foods.UpdateFoodInput) (*domain.Food, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Food), args.Error(1)
}

func (m *MockFoodUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFoodUseCase) GetByID(ctx context.Context, id int64) (*domain.Food, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Food), args.Error(1)
}

func (m *MockFoodUseCase) List(ctx context.Context) ([]domain.Food, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Food), args.Error(1)
}

func (m *MockFoodUseCase) ListAvailable(ctx context.Context) ([]domain.Food, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Food), args.Error(1)
}

type MockOrderUseCase struct {
	mock.Mock
}

func (m *MockOrderUseCase) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) List(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockAdminUseCase struct {
	mock.Mock
}

func (m *MockAdminUseCase) Login(ctx context.Context, input admins.LoginInput) (*auth.AccessToken, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.AccessToken), args.Error(1)
}

func (m *MockAdminUseCase) Create(ctx context.Context, input admins.CreateAdminInput) (*domain.Admin, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminUseCase) List(ctx context.Context) ([]domain.Admin, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Admin), args.Error(1)
}

func (m *MockAdminUseCase) Delete(ctx context.Context, actorID, id int64) error {
	return m.Called(ctx, actorID, id).Error(0)
}

func (m *MockAdminUseCase) EnsureBootstrapAdmin(ctx context.Context, name, email, password string) error {
	return m.Called(ctx, name, email, password).Error(0)
}

type MockBuddyUseCase struct {
	mock.Mock
}

func (m *MockBuddyUseCase) Join(ctx context.Context, input buddy.JoinInput) (*domain.BuddyRequest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BuddyRequest), args.Error(1)
}

func (m *MockBuddyUseCase) Cancel(ctx context.Context, id int64) (*domain.BuddyRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BuddyRequest), args.Error(1)
}

func (m *MockBuddyUseCase) GetByID(ctx context.Context, id int64) (*domain.BuddyRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BuddyRequest), args.Error(1)
}

func (m *MockBuddyUseCase) List(ctx context.Context) ([]domain.BuddyRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.BuddyRequest), args.Error(1)
}
