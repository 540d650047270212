package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	List(ctx context.Context, movieID int64) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	Delete(ctx context.Context, token string) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, movie_id, showtime, seat_number, customer_name, email, token, status, expires_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.MovieID, &b.Showtime, &b.SeatNumber, &b.CustomerName, &b.Email, &b.Token, &b.Status, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// CreatePending inserts the booking as PENDING. The partial unique index on
// (movie_id, showtime, seat_number) turns a double booking into ErrSeatTaken.
func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (movie_id, showtime, seat_number, customer_name, email, token, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		booking.MovieID, booking.Showtime, booking.SeatNumber, booking.CustomerName, booking.Email, booking.Token, booking.Status, booking.ExpiresAt).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrSeatTaken
	}
	return translate(err)
}

func (r *PGBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE token=$1`, token))
}

// List returns bookings newest first. movieID 0 means all movies.
func (r *PGBookingRepository) List(ctx context.Context, movieID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE ($1::bigint = 0 OR movie_id = $1) ORDER BY created_at DESC`, movieID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE token=$2 RETURNING `+bookingColumns, status, token))
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE status=$2 AND expires_at <= $3 RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) Delete(ctx context.Context, token string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE token=$1`, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
