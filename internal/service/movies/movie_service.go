package movies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/repository"
	"github.com/Domenick1991/cinemabooking/internal/validation"
	"github.com/gosimple/slug"
	"github.com/jinzhu/copier"
)

const DateLayout = "2006-01-02"

type MovieUseCase interface {
	Create(ctx context.Context, input CreateMovieInput) (*domain.Movie, error)
	Update(ctx context.Context, id int64, input UpdateMovieInput) (*domain.Movie, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Movie, error)
	List(ctx context.Context) ([]domain.Movie, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Movie, error)
	RefreshStatuses(ctx context.Context) (int, error)
}

type Cache interface {
	GetMovies(ctx context.Context) ([]domain.Movie, error)
	SetMovies(ctx context.Context, movies []domain.Movie) error
	InvalidateMovies(ctx context.Context) error
}

type CreateMovieInput struct {
	Title           string      `json:"title" validate:"required"`
	Description     string      `json:"description"`
	Genre           string      `json:"genre"`
	Language        string      `json:"language"`
	DurationMinutes int         `json:"duration_minutes" validate:"gt=0"`
	Cast            []string    `json:"cast" copier:"-"`
	PosterURL       string      `json:"poster_url" validate:"omitempty,url"`
	TrailerURL      string      `json:"trailer_url" validate:"omitempty,url"`
	Showtimes       []time.Time `json:"showtimes" copier:"-"`
	ReleaseDate     string      `json:"release_date" validate:"required,datetime=2006-01-02" copier:"-"`
}

// UpdateMovieInput is a patch: nil fields are left untouched and an empty URL
// clears it. There is no status field; status is always derived. Slice and
// date fields are applied by hand because copier merges slices element-wise.
type UpdateMovieInput struct {
	Title           *string      `json:"title" validate:"omitempty,min=1"`
	Description     *string      `json:"description"`
	Genre           *string      `json:"genre"`
	Language        *string      `json:"language"`
	DurationMinutes *int         `json:"duration_minutes" validate:"omitempty,gt=0"`
	Cast            *[]string    `json:"cast" copier:"-"`
	PosterURL       *string      `json:"poster_url" validate:"omitempty,url|eq="`
	TrailerURL      *string      `json:"trailer_url" validate:"omitempty,url|eq="`
	Showtimes       *[]time.Time `json:"showtimes" copier:"-"`
	ReleaseDate     *string      `json:"release_date" validate:"omitempty,datetime=2006-01-02" copier:"-"`
}

type MovieService struct {
	repo  repository.MovieRepository
	cache Cache
	now   func() time.Time
}

type MovieServiceOption func(*MovieService)

// WithClock overrides the source of the evaluation date.
func WithClock(now func() time.Time) MovieServiceOption {
	return func(s *MovieService) {
		s.now = now
	}
}

func NewMovieService(repo repository.MovieRepository, cache Cache, opts ...MovieServiceOption) *MovieService {
	s := &MovieService{repo: repo, cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MovieService) Create(ctx context.Context, input CreateMovieInput) (*domain.Movie, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	releaseDate, err := time.Parse(DateLayout, input.ReleaseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: release_date: %v", domain.ErrValidation, err)
	}

	movie := &domain.Movie{}
	if err := copier.Copy(movie, &input); err != nil {
		return nil, err
	}
	movie.ReleaseDate = releaseDate
	movie.Cast = input.Cast
	movie.Showtimes = input.Showtimes

	if movie.Slug, err = s.uniqueSlug(ctx, movie.Title, 0); err != nil {
		return nil, err
	}

	status, ok := Classify(movie.ReleaseDate, s.now())
	if !ok {
		// Too far out for any window; a new movie has no prior status to keep.
		logger.Warn("release date outside status windows, defaulting to upcoming",
			"title", movie.Title, "release_date", input.ReleaseDate)
		status = domain.MovieStatusUpcoming
	}
	movie.Status = status

	if err := s.repo.Create(ctx, movie); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return movie, nil
}

func (s *MovieService) Update(ctx context.Context, id int64, input UpdateMovieInput) (*domain.Movie, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldTitle := movie.Title

	if err := copier.CopyWithOption(movie, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}
	if input.Cast != nil {
		movie.Cast = *input.Cast
	}
	if input.Showtimes != nil {
		movie.Showtimes = *input.Showtimes
	}
	if input.ReleaseDate != nil {
		if movie.ReleaseDate, err = time.Parse(DateLayout, *input.ReleaseDate); err != nil {
			return nil, fmt.Errorf("%w: release_date: %v", domain.ErrValidation, err)
		}
	}
	if movie.Title != oldTitle {
		if movie.Slug, err = s.uniqueSlug(ctx, movie.Title, movie.ID); err != nil {
			return nil, err
		}
	}

	movie.Status = Resolve(movie.ReleaseDate, s.now(), movie.Status)

	if err := s.repo.Update(ctx, movie); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return movie, nil
}

func (s *MovieService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *MovieService) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MovieService) GetBySlug(ctx context.Context, slug string) (*domain.Movie, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *MovieService) List(ctx context.Context) ([]domain.Movie, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetMovies(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	movies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetMovies(ctx, movies); err != nil {
			logger.Warn("cache movies", "err", err)
		}
	}
	return movies, nil
}

func (s *MovieService) ListByStatus(ctx context.Context, raw string) ([]domain.Movie, error) {
	status, ok := parseStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w: unknown movie status %q", domain.ErrValidation, raw)
	}
	return s.repo.ListByStatus(ctx, status)
}

// RefreshStatuses re-evaluates every movie against the current date and
// persists the ones whose status changed.
func (s *MovieService) RefreshStatuses(ctx context.Context) (int, error) {
	movies, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	changed := 0
	for _, m := range movies {
		next := Resolve(m.ReleaseDate, now, m.Status)
		if next == m.Status {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, m.ID, next); err != nil {
			return changed, fmt.Errorf("update status of movie %d: %w", m.ID, err)
		}
		logger.Debug("movie status changed", "movie_id", m.ID, "from", m.Status, "to", next)
		changed++
	}

	if changed > 0 {
		s.invalidate(ctx)
	}
	return changed, nil
}

func (s *MovieService) uniqueSlug(ctx context.Context, title string, excludeID int64) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "movie"
	}
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *MovieService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMovies(ctx); err != nil {
		logger.Warn("invalidate movie cache", "err", err)
	}
}

func parseStatus(raw string) (domain.MovieStatus, bool) {
	for _, st := range []domain.MovieStatus{domain.MovieStatusUpcoming, domain.MovieStatusNowShowing, domain.MovieStatusEnded} {
		if strings.EqualFold(raw, string(st)) {
			return st, true
		}
	}
	return "", false
}

var _ MovieUseCase = (*MovieService)(nil)
