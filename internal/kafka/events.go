package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type BookingEvent struct {
	Type         string    `json:"type"`
	Token        string    `json:"token"`
	MovieID      int64     `json:"movie_id"`
	Showtime     time.Time `json:"showtime"`
	SeatNumber   string    `json:"seat_number"`
	CustomerName string    `json:"customer_name"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type OrderEvent struct {
	Type         string `json:"type"`
	OrderID      int64  `json:"order_id"`
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Status       string `json:"status"`
	TotalCents   int64  `json:"total_cents"`
}

// DecodeEvent inspects the "type" field and returns a *BookingEvent or an
// *OrderEvent.
func DecodeEvent(data []byte) (any, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(head.Type, "booking_"):
		var ev BookingEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return &ev, nil
	case strings.HasPrefix(head.Type, "order_"):
		var ev OrderEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return &ev, nil
	}
	return nil, fmt.Errorf("unknown event type %q", head.Type)
}
