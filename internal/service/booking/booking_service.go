package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/kafka"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/repository"
	"github.com/Domenick1991/cinemabooking/internal/validation"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, token string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	List(ctx context.Context, movieID int64) ([]domain.Booking, error)
	Delete(ctx context.Context, token string) error
	TicketQR(ctx context.Context, token string) ([]byte, error)
}

type Cache interface {
	AcquireSeatLock(ctx context.Context, movieID int64, showtime time.Time, seat string, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, movieID int64, showtime time.Time, seat string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	movies             repository.MovieRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	confirmationTTL    time.Duration
	now                func() time.Time
}

type CreateBookingInput struct {
	MovieID      int64     `json:"movie_id" validate:"gt=0"`
	Showtime     time.Time `json:"showtime" validate:"required"`
	SeatNumber   string    `json:"seat_number" validate:"required,max=8"`
	CustomerName string    `json:"customer_name" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	movies repository.MovieRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	holdTTL, confirmationTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		movies:          movies,
		cache:           cache,
		producer:        producer,
		bookingTopic:    bookingTopic,
		holdTTL:         holdTTL,
		confirmationTTL: confirmationTTL,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	input.SeatNumber = strings.ToUpper(strings.TrimSpace(input.SeatNumber))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	movie, err := s.movies.GetByID(ctx, input.MovieID)
	if err != nil {
		return nil, err
	}
	if movie.Status == domain.MovieStatusEnded {
		return nil, fmt.Errorf("%w: movie %q has ended", domain.ErrValidation, movie.Title)
	}
	if !movie.HasShowtime(input.Showtime) {
		return nil, fmt.Errorf("%w: movie %q has no showtime at %s", domain.ErrValidation, movie.Title, input.Showtime.Format(time.RFC3339))
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSeatLock(ctx, input.MovieID, input.Showtime, input.SeatNumber, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrSeatTaken
		}
		locked = true
	}

	expiresIn := s.confirmationTTL
	if expiresIn == 0 {
		expiresIn = s.holdTTL
	}

	booking := &domain.Booking{
		MovieID:      input.MovieID,
		Showtime:     input.Showtime,
		SeatNumber:   input.SeatNumber,
		CustomerName: input.CustomerName,
		Email:        input.Email,
		Token:        uuid.NewString(),
		ExpiresAt:    s.now().Add(expiresIn),
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		if locked {
			s.releaseLock(ctx, booking)
		}
		return nil, err
	}

	booking.Status = domain.BookingStatusPending
	if err := s.publish(ctx, "booking_created", booking); err != nil {
		logger.Warn("publish booking_created", "token", booking.Token, "err", err)
	}
	return booking, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking is %s", domain.ErrInvalidTransition, current.Status)
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_confirmed", updated); err != nil {
		logger.Warn("publish booking_confirmed", "token", updated.Token, "err", err)
	}
	s.releaseLock(ctx, updated)
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled || current.Status == domain.BookingStatusExpired {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_cancelled", updated); err != nil {
		logger.Warn("publish booking_cancelled", "token", updated.Token, "err", err)
	}
	s.releaseLock(ctx, updated)
	return updated, nil
}

func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		b := &expired[i]
		if err := s.publish(ctx, "booking_expired", b); err != nil {
			logger.Warn("publish booking_expired", "token", b.Token, "err", err)
		}
		s.releaseLock(ctx, b)
	}
	return expired, nil
}

func (s *BookingService) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	return s.bookings.GetByToken(ctx, token)
}

// List returns bookings of one movie, or all bookings when movieID is 0.
func (s *BookingService) List(ctx context.Context, movieID int64) ([]domain.Booking, error) {
	return s.bookings.List(ctx, movieID)
}

func (s *BookingService) Delete(ctx context.Context, token string) error {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, token); err != nil {
		return err
	}
	s.releaseLock(ctx, current)
	return nil
}

// TicketQR renders the booking token as a PNG QR code. Only confirmed
// bookings have a ticket.
func (s *BookingService) TicketQR(ctx context.Context, token string) ([]byte, error) {
	b, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: booking is %s", domain.ErrInvalidTransition, b.Status)
	}
	return qrcode.Encode(b.Token, qrcode.Medium, qrSize)
}

func (s *BookingService) releaseLock(ctx context.Context, b *domain.Booking) {
	if s.cache == nil {
		return
	}
	if err := s.cache.ReleaseSeatLock(ctx, b.MovieID, b.Showtime, b.SeatNumber); err != nil {
		logger.Warn("release seat lock", "token", b.Token, "err", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		Token:        booking.Token,
		MovieID:      booking.MovieID,
		Showtime:     booking.Showtime,
		SeatNumber:   booking.SeatNumber,
		CustomerName: booking.CustomerName,
		Email:        booking.Email,
		Status:       string(booking.Status),
		ExpiresAt:    booking.ExpiresAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Token, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.Token, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
