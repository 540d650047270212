package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BuddyRepository interface {
	Create(ctx context.Context, req *domain.BuddyRequest) error
	GetByID(ctx context.Context, id int64) (*domain.BuddyRequest, error)
	List(ctx context.Context) ([]domain.BuddyRequest, error)
	FindOpenMatch(ctx context.Context, movieID int64, showtime time.Time, excludeID int64) (*domain.BuddyRequest, error)
	MarkMatched(ctx context.Context, a, b int64) error
	Cancel(ctx context.Context, id int64) (*domain.BuddyRequest, error)
}

type PGBuddyRepository struct {
	db *pgxpool.Pool
}

func NewBuddyRepository(db *pgxpool.Pool) BuddyRepository {
	return &PGBuddyRepository{db: db}
}

const buddyColumns = `id, movie_id, showtime, name, contact, status, matched_with, created_at, updated_at`

func scanBuddy(row pgx.Row) (*domain.BuddyRequest, error) {
	var b domain.BuddyRequest
	if err := row.Scan(&b.ID, &b.MovieID, &b.Showtime, &b.Name, &b.Contact, &b.Status, &b.MatchedWith, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *PGBuddyRepository) Create(ctx context.Context, req *domain.BuddyRequest) error {
	req.Status = domain.BuddyStatusOpen
	err := r.db.QueryRow(ctx, `INSERT INTO buddy_requests (movie_id, showtime, name, contact, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		req.MovieID, req.Showtime, req.Name, req.Contact, req.Status).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	return translate(err)
}

func (r *PGBuddyRepository) GetByID(ctx context.Context, id int64) (*domain.BuddyRequest, error) {
	return scanBuddy(r.db.QueryRow(ctx, `SELECT `+buddyColumns+` FROM buddy_requests WHERE id=$1`, id))
}

func (r *PGBuddyRepository) List(ctx context.Context) ([]domain.BuddyRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+buddyColumns+` FROM buddy_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs := make([]domain.BuddyRequest, 0)
	for rows.Next() {
		b, err := scanBuddy(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *b)
	}
	return reqs, rows.Err()
}

// FindOpenMatch returns the oldest other OPEN request for the same screening.
func (r *PGBuddyRepository) FindOpenMatch(ctx context.Context, movieID int64, showtime time.Time, excludeID int64) (*domain.BuddyRequest, error) {
	return scanBuddy(r.db.QueryRow(ctx, `SELECT `+buddyColumns+` FROM buddy_requests
		WHERE movie_id=$1 AND showtime=$2 AND status=$3 AND id<>$4
		ORDER BY created_at, id LIMIT 1`, movieID, showtime, domain.BuddyStatusOpen, excludeID))
}

// MarkMatched pairs two OPEN requests. If either one is no longer OPEN the
// transaction is rolled back and ErrConflict is returned.
func (r *PGBuddyRepository) MarkMatched(ctx context.Context, a, b int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		cmd, err := tx.Exec(ctx, `UPDATE buddy_requests SET status=$1, matched_with=$2, updated_at=now() WHERE id=$3 AND status=$4`,
			domain.BuddyStatusMatched, pair[1], pair[0], domain.BuddyStatusOpen)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrConflict
		}
	}
	return tx.Commit(ctx)
}

func (r *PGBuddyRepository) Cancel(ctx context.Context, id int64) (*domain.BuddyRequest, error) {
	return scanBuddy(r.db.QueryRow(ctx, `UPDATE buddy_requests SET status=$1, updated_at=now() WHERE id=$2 AND status=$3 RETURNING `+buddyColumns,
		domain.BuddyStatusCancelled, id, domain.BuddyStatusOpen))
}

var _ BuddyRepository = (*PGBuddyRepository)(nil)
