package domain

import "time"

type BuddyStatus string

const (
	BuddyStatusOpen      BuddyStatus = "OPEN"
	BuddyStatusMatched   BuddyStatus = "MATCHED"
	BuddyStatusCancelled BuddyStatus = "CANCELLED"
)

// BuddyRequest is one viewer looking for company at a given screening.
type BuddyRequest struct {
	ID          int64       `json:"id"`
	MovieID     int64       `json:"movie_id"`
	Showtime    time.Time   `json:"showtime"`
	Name        string      `json:"name"`
	Contact     string      `json:"contact"`
	Status      BuddyStatus `json:"status"`
	MatchedWith *int64      `json:"matched_with,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
