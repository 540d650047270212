package domain

import "time"

type MovieStatus string

const (
	MovieStatusUpcoming   MovieStatus = "Upcoming"
	MovieStatusNowShowing MovieStatus = "NowShowing"
	MovieStatusEnded      MovieStatus = "Ended"
)

func (s MovieStatus) Valid() bool {
	switch s {
	case MovieStatusUpcoming, MovieStatusNowShowing, MovieStatusEnded:
		return true
	}
	return false
}

// Movie.Status is derived from ReleaseDate whenever the movie is saved.
type Movie struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Description     string      `json:"description"`
	Genre           string      `json:"genre"`
	Language        string      `json:"language"`
	DurationMinutes int         `json:"duration_minutes"`
	Cast            []string    `json:"cast"`
	PosterURL       string      `json:"poster_url"`
	TrailerURL      string      `json:"trailer_url"`
	Showtimes       []time.Time `json:"showtimes"`
	ReleaseDate     time.Time   `json:"release_date"`
	Status          MovieStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// HasShowtime reports whether t is one of the movie's showtimes. A movie with
// no showtimes accepts any time.
func (m *Movie) HasShowtime(t time.Time) bool {
	if len(m.Showtimes) == 0 {
		return true
	}
	for _, s := range m.Showtimes {
		if s.Equal(t) {
			return true
		}
	}
	return false
}
