package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

type Booking struct {
	ID           int64         `json:"id"`
	MovieID      int64         `json:"movie_id"`
	Showtime     time.Time     `json:"showtime"`
	SeatNumber   string        `json:"seat_number"`
	CustomerName string        `json:"customer_name"`
	Email        string        `json:"email"`
	Token        string        `json:"token"`
	Status       BookingStatus `json:"status"`
	ExpiresAt    time.Time     `json:"expires_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
