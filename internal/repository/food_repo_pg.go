package repository

import (
	"context"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FoodRepository interface {
	Create(ctx context.Context, food *domain.Food) error
	Update(ctx context.Context, food *domain.Food) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Food, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Food, error)
	List(ctx context.Context, onlyAvailable bool) ([]domain.Food, error)
}

type PGFoodRepository struct {
	db *pgxpool.Pool
}

func NewFoodRepository(db *pgxpool.Pool) FoodRepository {
	return &PGFoodRepository{db: db}
}

const foodColumns = `id, name, description, category, price_cents, image_url, available, created_at, updated_at`

func scanFood(row pgx.Row) (*domain.Food, error) {
	var f domain.Food
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Category, &f.PriceCents, &f.ImageURL, &f.Available, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r *PGFoodRepository) Create(ctx context.Context, f *domain.Food) error {
	err := r.db.QueryRow(ctx, `INSERT INTO foods (name, description, category, price_cents, image_url, available)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		f.Name, f.Description, f.Category, f.PriceCents, f.ImageURL, f.Available).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	return translate(err)
}

func (r *PGFoodRepository) Update(ctx context.Context, f *domain.Food) error {
	err := r.db.QueryRow(ctx, `UPDATE foods SET name=$1, description=$2, category=$3, price_cents=$4, image_url=$5, available=$6, updated_at=now()
		WHERE id=$7 RETURNING updated_at`,
		f.Name, f.Description, f.Category, f.PriceCents, f.ImageURL, f.Available, f.ID).
		Scan(&f.UpdatedAt)
	return translate(err)
}

func (r *PGFoodRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM foods WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGFoodRepository) GetByID(ctx context.Context, id int64) (*domain.Food, error) {
	return scanFood(r.db.QueryRow(ctx, `SELECT `+foodColumns+` FROM foods WHERE id=$1`, id))
}

func (r *PGFoodRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Food, error) {
	return r.query(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ANY($1)`, ids)
}

func (r *PGFoodRepository) List(ctx context.Context, onlyAvailable bool) ([]domain.Food, error) {
	return r.query(ctx, `SELECT `+foodColumns+` FROM foods WHERE (NOT $1::boolean OR available) ORDER BY category, name`, onlyAvailable)
}

func (r *PGFoodRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Food, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	foods := make([]domain.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, *f)
	}
	return foods, rows.Err()
}

var _ FoodRepository = (*PGFoodRepository)(nil)
