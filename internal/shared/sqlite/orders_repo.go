package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
)

// OrdersRepo implements ports.OrderStore on SQLite.
type OrdersRepo struct {
	db *sql.DB
}

var _ ports.OrderStore = (*OrdersRepo)(nil)

func NewOrdersRepo(d *DB) *OrdersRepo {
	return &OrdersRepo{db: d.db}
}

const orderColumns = `id, customer_name, customer_phone, customer_email, items,
	subtotal, tax, total, status, payment_status, gateway_session_id,
	location_id, user_id, estimated_minutes, remaining_minutes, created_at, updated_at`

func (r *OrdersRepo) InsertOrder(ctx context.Context, o *orders.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, customer_phone, customer_email, items,
			subtotal, tax, total, status, payment_status, location_id, user_id,
			estimated_minutes, remaining_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.CustomerName, o.CustomerPhone, o.CustomerEmail, string(items),
		int64(o.Subtotal), int64(o.Tax), int64(o.Total), o.Status, o.PaymentStatus,
		o.LocationID, o.UserID, o.EstimatedMinutes, o.RemainingMinutes, now, now); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, changed_at)
		VALUES (?, ?, ?)`, o.ID, o.Status, now); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OrdersRepo) FetchOrderByID(ctx context.Context, id string) (*orders.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return scanOrder(row)
}

func (r *OrdersRepo) FetchOrderBySession(ctx context.Context, sessionID string) (*orders.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE gateway_session_id = ?`, sessionID)
	return scanOrder(row)
}

func (r *OrdersRepo) ListOrders(ctx context.Context) ([]orders.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *OrdersRepo) ListRecentOrders(ctx context.Context, n int) ([]orders.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT ?`, n)
}

func (r *OrdersRepo) ListOrdersByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *OrdersRepo) ListCooking(ctx context.Context) ([]orders.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = ? AND remaining_minutes > 0`, orders.StatusCooking)
}

func (r *OrdersRepo) UpdateStatus(ctx context.Context, id string, status orders.OrderStatus, remaining *int, payment *orders.PaymentStatus) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = ?,
		    remaining_minutes = COALESCE(?, remaining_minutes),
		    payment_status = COALESCE(?, payment_status),
		    updated_at = ?
		WHERE id = ?`,
		status, remaining, payment, now, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, changed_at)
		VALUES (?, ?, ?)`, id, status, now); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OrdersRepo) UpdateCountdown(ctx context.Context, id string, remaining int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET remaining_minutes = ?, updated_at = ? WHERE id = ?`,
		remaining, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *OrdersRepo) SetGatewaySession(ctx context.Context, id, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET gateway_session_id = ?, updated_at = ? WHERE id = ?`,
		sessionID, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *OrdersRepo) ListHistory(ctx context.Context, id string) ([]orders.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, status, changed_at
		FROM order_status_history
		WHERE order_id = ?
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
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
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

func (r *OrdersRepo) queryOrders(ctx context.Context, query string, args ...any) ([]orders.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
	var items string
	var subtotal, tax, total int64

	err := s.Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail, &items,
		&subtotal, &tax, &total, &o.Status, &o.PaymentStatus, &o.GatewaySessionID,
		&o.LocationID, &o.UserID, &o.EstimatedMinutes, &o.RemainingMinutes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orders.ErrNotFound
		}
		return nil, err
	}

	o.Subtotal = orders.Money(subtotal)
	o.Tax = orders.Money(tax)
	o.Total = orders.Money(total)

	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items for %s: %w", o.ID, err)
	}
	return &o, nil
}
