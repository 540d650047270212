package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MovieRepository interface {
	Create(ctx context.Context, movie *domain.Movie) error
	Update(ctx context.Context, movie *domain.Movie) error
	UpdateStatus(ctx context.Context, id int64, status domain.MovieStatus) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Movie, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	List(ctx context.Context) ([]domain.Movie, error)
	ListByStatus(ctx context.Context, status domain.MovieStatus) ([]domain.Movie, error)
}

type PGMovieRepository struct {
	db *pgxpool.Pool
}

func NewMovieRepository(db *pgxpool.Pool) MovieRepository {
	return &PGMovieRepository{db: db}
}

const movieColumns = `id, title, slug, description, genre, language, duration_minutes, cast_members, poster_url, trailer_url, showtimes, release_date, status, created_at, updated_at`

func scanMovie(row pgx.Row) (*domain.Movie, error) {
	var m domain.Movie
	if err := row.Scan(&m.ID, &m.Title, &m.Slug, &m.Description, &m.Genre, &m.Language, &m.DurationMinutes,
		&m.Cast, &m.PosterURL, &m.TrailerURL, &m.Showtimes, &m.ReleaseDate, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *PGMovieRepository) Create(ctx context.Context, m *domain.Movie) error {
	err := r.db.QueryRow(ctx, `INSERT INTO movies (title, slug, description, genre, language, duration_minutes, cast_members, poster_url, trailer_url, showtimes, release_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		m.Title, m.Slug, m.Description, m.Genre, m.Language, m.DurationMinutes, nonNilStrings(m.Cast), m.PosterURL, m.TrailerURL, nonNilTimes(m.Showtimes), m.ReleaseDate, m.Status).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return translate(err)
}

func (r *PGMovieRepository) Update(ctx context.Context, m *domain.Movie) error {
	err := r.db.QueryRow(ctx, `UPDATE movies SET title=$1, slug=$2, description=$3, genre=$4, language=$5, duration_minutes=$6,
		cast_members=$7, poster_url=$8, trailer_url=$9, showtimes=$10, release_date=$11, status=$12, updated_at=now()
		WHERE id=$13 RETURNING updated_at`,
		m.Title, m.Slug, m.Description, m.Genre, m.Language, m.DurationMinutes, nonNilStrings(m.Cast), m.PosterURL, m.TrailerURL, nonNilTimes(m.Showtimes), m.ReleaseDate, m.Status, m.ID).
		Scan(&m.UpdatedAt)
	return translate(err)
}

func (r *PGMovieRepository) UpdateStatus(ctx context.Context, id int64, status domain.MovieStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE movies SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGMovieRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM movies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGMovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	return scanMovie(r.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id=$1`, id))
}

func (r *PGMovieRepository) GetBySlug(ctx context.Context, slug string) (*domain.Movie, error) {
	return scanMovie(r.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE slug=$1`, slug))
}

func (r *PGMovieRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE slug=$1 AND id<>$2)`, slug, excludeID).Scan(&exists)
	return exists, err
}

func (r *PGMovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	return r.query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY release_date DESC, id`)
}

func (r *PGMovieRepository) ListByStatus(ctx context.Context, status domain.MovieStatus) ([]domain.Movie, error) {
	return r.query(ctx, `SELECT `+movieColumns+` FROM movies WHERE status=$1 ORDER BY release_date, id`, status)
}

func (r *PGMovieRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Movie, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilTimes(t []time.Time) []time.Time {
	if t == nil {
		return []time.Time{}
	}
	return t
}

var _ MovieRepository = (*PGMovieRepository)(nil)
