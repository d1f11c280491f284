package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curbsidehq/curbside/internal/shared/config"
)

// NewPool builds a DSN from cfg, configures pgxpool, verifies connectivity,
// applies the schema, and returns the pool.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Database.Host, strconv.Itoa(cfg.Database.Port)),
		Path:   cfg.Database.Name,
		User:   url.UserPassword(cfg.Database.User, cfg.Database.Password),
	}

	pcfg, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	pcfg.HealthCheckPeriod = 30 * time.Second
	pcfg.MaxConnIdleTime = 5 * time.Minute

	// keep sessions on UTC
	pcfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `SET TIME ZONE 'UTC'`)
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	return pool, nil
}

// ensureSchema creates the tables if missing. Idempotent, applied at
// process start like the sqlite backend.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id                 TEXT PRIMARY KEY,
			customer_name      TEXT NOT NULL,
			customer_phone     TEXT NOT NULL,
			customer_email     TEXT,
			items              JSONB NOT NULL,
			subtotal           BIGINT NOT NULL,
			tax                BIGINT NOT NULL,
			total              BIGINT NOT NULL,
			status             TEXT NOT NULL,
			payment_status     TEXT NOT NULL DEFAULT 'pending',
			gateway_session_id TEXT,
			location_id        TEXT NOT NULL,
			user_id            TEXT,
			estimated_minutes  INT NOT NULL,
			remaining_minutes  INT NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_status_history (
			id         BIGSERIAL PRIMARY KEY,
			order_id   TEXT NOT NULL,
			status     TEXT NOT NULL,
			changed_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_order ON order_status_history (order_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_session ON orders (gateway_session_id)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT,
			price       BIGINT NOT NULL,
			category    TEXT NOT NULL,
			emoji       TEXT,
			available   BOOLEAN NOT NULL DEFAULT TRUE,
			image_url   TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			type             TEXT NOT NULL DEFAULT 'mobile',
			description      TEXT,
			current_location TEXT,
			schedule         TEXT,
			phone            TEXT,
			status           TEXT NOT NULL DEFAULT 'active',
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
