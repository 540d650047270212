package repository

import (
	"context"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

const orderColumns = `id, customer_name, email, booking_token, total_cents, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.CustomerName, &o.Email, &o.BookingToken, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// Create writes the order and its items in one transaction.
func (r *PGOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO orders (customer_name, email, booking_token, total_cents, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		order.CustomerName, order.Email, order.BookingToken, order.TotalCents, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return translate(err)
	}

	batch := &pgx.Batch{}
	for _, it := range order.Items {
		batch.Queue(`INSERT INTO order_items (order_id, food_id, name, quantity, unit_price_cents) VALUES ($1, $2, $3, $4, $5)`,
			order.ID, it.FoodID, it.Name, it.Quantity, it.UnitPriceCents)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PGOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ptrs := make([]*domain.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PGOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `UPDATE orders SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+orderColumns, status, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PGOrderRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGOrderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		o.Items = make([]domain.OrderItem, 0)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.db.Query(ctx, `SELECT order_id, food_id, name, quantity, unit_price_cents FROM order_items WHERE order_id = ANY($1) ORDER BY order_id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var it domain.OrderItem
		if err := rows.Scan(&orderID, &it.FoodID, &it.Name, &it.Quantity, &it.UnitPriceCents); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

var _ OrderRepository = (*PGOrderRepository)(nil)
