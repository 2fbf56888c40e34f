package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"furnitrack/internal/domain/order"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

const orderColumns = `id, name, customer, phone, messenger, status,
	start_date, end_date, duration,
	price, cost, profit, profit_percent, prepayment, balance,
	version, expenses, photos, notes`

type OrderRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewOrderRepository(storage *Storage, log *slog.Logger) *OrderRepository {
	return &OrderRepository{
		pool: storage.Pool(),
		log:  log.With("component", "order_repository"),
	}
}

func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders ORDER BY id", orderColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list orders", "error", err)
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)

	row := r.pool.QueryRow(ctx, query, id)
	o, err := r.scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		r.log.Error("failed to get order", "order_id", id, "error", err)
		return nil, fmt.Errorf("get order: %w", err)
	}

	return o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (int64, error) {
	const query = `
		INSERT INTO orders (name, customer, phone, messenger, status,
		                    start_date, end_date, duration,
		                    price, cost, profit, profit_percent, prepayment, balance,
		                    version, expenses, photos, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`

	args, err := insertArgs(o)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		r.log.Error("failed to create order", "name", o.Name, "error", err)
		return 0, fmt.Errorf("create order: %w", err)
	}

	return id, nil
}

func (r *OrderRepository) Update(ctx context.Context, id int64, o *order.Order) error {
	const query = `
		UPDATE orders
		SET name = $1, customer = $2, phone = $3, messenger = $4, status = $5,
		    start_date = $6, end_date = $7, duration = $8,
		    price = $9, cost = $10, profit = $11, profit_percent = $12,
		    prepayment = $13, balance = $14,
		    version = $15, expenses = $16, photos = $17, notes = $18,
		    updated_at = NOW()
		WHERE id = $19`

	args, err := insertArgs(o)
	if err != nil {
		return err
	}
	args = append(args, id)

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to update order", "order_id", id, "error", err)
		return fmt.Errorf("update order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM orders WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("failed to delete order", "order_id", id, "error", err)
		return fmt.Errorf("delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, "SELECT id FROM orders")
	if err != nil {
		r.log.Error("failed to list order ids", "error", err)
		return nil, fmt.Errorf("list order ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// BulkCreate вставляет пакет новых заказов одной серией через pgx.Batch.
func (r *OrderRepository) BulkCreate(ctx context.Context, orders []order.Order) error {
	const query = `
		INSERT INTO orders (name, customer, phone, messenger, status,
		                    start_date, end_date, duration,
		                    price, cost, profit, profit_percent, prepayment, balance,
		                    version, expenses, photos, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	batch := &pgx.Batch{}
	for i := range orders {
		args, err := insertArgs(&orders[i])
		if err != nil {
			return err
		}
		batch.Queue(query, args...)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range orders {
		if _, err := results.Exec(); err != nil {
			r.log.Error("failed to bulk create orders", "count", len(orders), "error", err)
			return fmt.Errorf("bulk create orders: %w", err)
		}
	}

	return nil
}

func insertArgs(o *order.Order) ([]interface{}, error) {
	expenses, err := json.Marshal(o.Expenses)
	if err != nil {
		return nil, fmt.Errorf("marshal expenses: %w", err)
	}
	photos, err := json.Marshal(o.Photos)
	if err != nil {
		return nil, fmt.Errorf("marshal photos: %w", err)
	}

	status := o.Status
	if status == "" {
		status = order.StatusPending
	}
	version := o.Version
	if version == 0 {
		version = 1
	}

	return []interface{}{
		o.Name, o.Customer, o.Phone, o.Messenger, status,
		o.StartDate, o.EndDate, o.Duration,
		o.Price, o.Cost, o.Profit, o.ProfitPercent, o.Prepayment, o.Balance,
		version, expenses, photos, o.Notes,
	}, nil
}

func (r *OrderRepository) scanOrders(rows pgx.Rows) ([]order.Order, error) {
	orders := []order.Order{}
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var id int64
	var expenses, photos []byte

	err := row.Scan(&id, &o.Name, &o.Customer, &o.Phone, &o.Messenger, &o.Status,
		&o.StartDate, &o.EndDate, &o.Duration,
		&o.Price, &o.Cost, &o.Profit, &o.ProfitPercent, &o.Prepayment, &o.Balance,
		&o.Version, &expenses, &photos, &o.Notes)
	if err != nil {
		return nil, err
	}

	o.ID = order.SyncedID(id)
	if err := json.Unmarshal(expenses, &o.Expenses); err != nil {
		return nil, fmt.Errorf("unmarshal expenses: %w", err)
	}
	if err := json.Unmarshal(photos, &o.Photos); err != nil {
		return nil, fmt.Errorf("unmarshal photos: %w", err)
	}

	return &o, nil
}
