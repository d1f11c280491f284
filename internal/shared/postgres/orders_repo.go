package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
)

// OrdersRepo implements ports.OrderStore on PostgreSQL.
type OrdersRepo struct {
	pool *pgxpool.Pool
}

var _ ports.OrderStore = (*OrdersRepo)(nil)

func NewOrdersRepo(pool *pgxpool.Pool) *OrdersRepo {
	return &OrdersRepo{pool: pool}
}

const orderColumns = `id, customer_name, customer_phone, customer_email, items,
	subtotal, tax, total, status, payment_status, gateway_session_id,
	location_id, user_id, estimated_minutes, remaining_minutes, created_at, updated_at`

// InsertOrder writes the order and its initial history row in one
// transaction.
func (r *OrdersRepo) InsertOrder(ctx context.Context, o *orders.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, customer_name, customer_phone, customer_email, items,
			subtotal, tax, total, status, payment_status, location_id, user_id,
			estimated_minutes, remaining_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		o.ID, o.CustomerName, o.CustomerPhone, o.CustomerEmail, items,
		int64(o.Subtotal), int64(o.Tax), int64(o.Total), o.Status, o.PaymentStatus,
		o.LocationID, o.UserID, o.EstimatedMinutes, o.RemainingMinutes,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, status, changed_at)
		VALUES ($1, $2, now())`, o.ID, o.Status); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *OrdersRepo) FetchOrderByID(ctx context.Context, id string) (*orders.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *OrdersRepo) FetchOrderBySession(ctx context.Context, sessionID string) (*orders.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE gateway_session_id = $1`, sessionID)
	return scanOrder(row)
}

func (r *OrdersRepo) ListOrders(ctx context.Context) ([]orders.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *OrdersRepo) ListRecentOrders(ctx context.Context, n int) ([]orders.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, n)
}

func (r *OrdersRepo) ListOrdersByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *OrdersRepo) ListCooking(ctx context.Context) ([]orders.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1 AND remaining_minutes > 0`, orders.StatusCooking)
}

// UpdateStatus persists a transition and its history row atomically.
func (r *OrdersRepo) UpdateStatus(ctx context.Context, id string, status orders.OrderStatus, remaining *int, payment *orders.PaymentStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    remaining_minutes = COALESCE($2, remaining_minutes),
		    payment_status = COALESCE($3, payment_status),
		    updated_at = now()
		WHERE id = $4`,
		status, remaining, payment, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, status, changed_at)
		VALUES ($1, $2, now())`, id, status); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *OrdersRepo) UpdateCountdown(ctx context.Context, id string, remaining int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET remaining_minutes = $1, updated_at = now() WHERE id = $2`,
		remaining, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *OrdersRepo) SetGatewaySession(ctx context.Context, id, sessionID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET gateway_session_id = $1, updated_at = now() WHERE id = $2`,
		sessionID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *OrdersRepo) ListHistory(ctx context.Context, id string) ([]orders.StatusHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id, status, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.StatusHistoryEntry
	for rows.Next() {
		var e orders.StatusHistoryEntry
		if err := rows.Scan(&e.OrderID, &e.Status, &e.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *OrdersRepo) CountByStatus(ctx context.Context) (map[orders.OrderStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[orders.OrderStatus]int)
	for rows.Next() {
		var st orders.OrderStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

// --- scanning helpers ---

func (r *OrdersRepo) queryOrders(ctx context.Context, sql string, args ...any) ([]orders.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (*orders.Order, error) {
	var o orders.Order
	var items []byte
	var subtotal, tax, total int64
	var createdAt, updatedAt time.Time

	err := s.Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail, &items,
		&subtotal, &tax, &total, &o.Status, &o.PaymentStatus, &o.GatewaySessionID,
		&o.LocationID, &o.UserID, &o.EstimatedMinutes, &o.RemainingMinutes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrNotFound
		}
		return nil, err
	}

	o.Subtotal = orders.Money(subtotal)
	o.Tax = orders.Money(tax)
	o.Total = orders.Money(total)
	o.CreatedAt = createdAt
	o.UpdatedAt = updatedAt

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items for %s: %w", o.ID, err)
	}
	return &o, nil
}
