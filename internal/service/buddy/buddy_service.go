package buddy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/repository"
	"github.com/Domenick1991/cinemabooking/internal/validation"
)

const (
	MessageJoined    = "joined"
	MessageMatched   = "matched"
	MessageCancelled = "cancelled"
	MessageError     = "error"
)

// Message is what a buddy socket receives.
type Message struct {
	Type    string               `json:"type"`
	Request *domain.BuddyRequest `json:"request,omitempty"`
	Partner *domain.BuddyRequest `json:"partner,omitempty"`
	Error   string               `json:"error,omitempty"`
}

type BuddyUseCase interface {
	Join(ctx context.Context, input JoinInput) (*domain.BuddyRequest, error)
	Cancel(ctx context.Context, id int64) (*domain.BuddyRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.BuddyRequest, error)
	List(ctx context.Context) ([]domain.BuddyRequest, error)
}

type Publisher interface {
	PublishBuddy(ctx context.Context, requestID int64, payload any) error
}

type JoinInput struct {
	MovieID  int64     `json:"movie_id" validate:"gt=0"`
	Showtime time.Time `json:"showtime" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Contact  string    `json:"contact" validate:"required"`
}

type BuddyService struct {
	repo      repository.BuddyRepository
	movies    repository.MovieRepository
	publisher Publisher
}

func NewBuddyService(repo repository.BuddyRepository, movies repository.MovieRepository, publisher Publisher) *BuddyService {
	return &BuddyService{repo: repo, movies: movies, publisher: publisher}
}

// Join registers a request and pairs it with the oldest open request for the
// same screening, if there is one.
func (s *BuddyService) Join(ctx context.Context, input JoinInput) (*domain.BuddyRequest, error) {
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

	req := &domain.BuddyRequest{
		MovieID:  input.MovieID,
		Showtime: input.Showtime,
		Name:     input.Name,
		Contact:  input.Contact,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	partner, err := s.repo.FindOpenMatch(ctx, req.MovieID, req.Showtime, req.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return req, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkMatched(ctx, req.ID, partner.ID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Someone else got there first; report whatever state we ended in.
			return s.repo.GetByID(ctx, req.ID)
		}
		return nil, err
	}

	req.Status, partner.Status = domain.BuddyStatusMatched, domain.BuddyStatusMatched
	req.MatchedWith, partner.MatchedWith = &partner.ID, &req.ID

	s.notify(ctx, req.ID, Message{Type: MessageMatched, Request: req, Partner: partner})
	s.notify(ctx, partner.ID, Message{Type: MessageMatched, Request: partner, Partner: req})
	return req, nil
}

// Cancel withdraws an open request. Matched requests cannot be cancelled.
func (s *BuddyService) Cancel(ctx context.Context, id int64) (*domain.BuddyRequest, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch current.Status {
	case domain.BuddyStatusCancelled:
		return current, nil
	case domain.BuddyStatusMatched:
		return nil, fmt.Errorf("%w: request is already matched", domain.ErrInvalidTransition)
	}

	cancelled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: request is no longer open", domain.ErrInvalidTransition)
		}
		return nil, err
	}
	s.notify(ctx, cancelled.ID, Message{Type: MessageCancelled, Request: cancelled})
	return cancelled, nil
}

func (s *BuddyService) GetByID(ctx context.Context, id int64) (*domain.BuddyRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BuddyService) List(ctx context.Context) ([]domain.BuddyRequest, error) {
	return s.repo.List(ctx)
}

func (s *BuddyService) notify(ctx context.Context, requestID int64, msg Message) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBuddy(ctx, requestID, msg); err != nil {
		logger.Warn("publish buddy message", "request_id", requestID, "type", msg.Type, "err", err)
	}
}

var _ BuddyUseCase = (*BuddyService)(nil)
