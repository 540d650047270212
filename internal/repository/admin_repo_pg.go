package repository

import (
	"context"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

type PGAdminRepository struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) AdminRepository {
	return &PGAdminRepository{db: db}
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var a domain.Admin
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *PGAdminRepository) Create(ctx context.Context, a *domain.Admin) error {
	err := r.db.QueryRow(ctx, `INSERT INTO admins (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`,
		a.Name, a.Email, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
	return translate(err)
}

func (r *PGAdminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	return scanAdmin(r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, created_at FROM admins WHERE id=$1`, id))
}

func (r *PGAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return scanAdmin(r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, created_at FROM admins WHERE lower(email)=lower($1)`, email))
}

func (r *PGAdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email, password_hash, created_at FROM admins ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := make([]domain.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

func (r *PGAdminRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM admins`).Scan(&n)
	return n, err
}

func (r *PGAdminRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM admins WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ AdminRepository = (*PGAdminRepository)(nil)
