package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curbsidehq/curbside/internal/domain/catalog"
	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
)

// CatalogRepo implements ports.CatalogStore on PostgreSQL.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

var _ ports.CatalogStore = (*CatalogRepo)(nil)

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

func (r *CatalogRepo) ListMenu(ctx context.Context) ([]catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, price, category, emoji, available, image_url, created_at, updated_at
		FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.MenuItem
	for rows.Next() {
		var m catalog.MenuItem
		var price int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &price, &m.Category,
			&m.Emoji, &m.Available, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Price = orders.Money(price)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) GetMenuItem(ctx context.Context, id int64) (*catalog.MenuItem, error) {
	var m catalog.MenuItem
	var price int64
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, price, category, emoji, available, image_url, created_at, updated_at
		FROM menu_items WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Description, &price, &m.Category,
			&m.Emoji, &m.Available, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Price = orders.Money(price)
	return &m, nil
}

func (r *CatalogRepo) InsertMenuItem(ctx context.Context, m *catalog.MenuItem) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO menu_items (name, description, price, category, emoji, available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		m.Name, m.Description, int64(m.Price), m.Category, m.Emoji, m.Available, m.ImageURL).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *CatalogRepo) UpdateMenuItem(ctx context.Context, m *catalog.MenuItem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, emoji = $5,
		    available = $6, image_url = $7, updated_at = now()
		WHERE id = $8`,
		m.Name, m.Description, int64(m.Price), m.Category, m.Emoji, m.Available, m.ImageURL, m.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) DeleteMenuItem(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) ListLocations(ctx context.Context) ([]catalog.Location, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, type, description, current_location, schedule, phone, status, updated_at
		FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Location
	for rows.Next() {
		var l catalog.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Type, &l.Description,
			&l.CurrentLocation, &l.Schedule, &l.Phone, &l.Status, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) GetLocation(ctx context.Context, id string) (*catalog.Location, error) {
	var l catalog.Location
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, type, description, current_location, schedule, phone, status, updated_at
		FROM locations WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Type, &l.Description,
			&l.CurrentLocation, &l.Schedule, &l.Phone, &l.Status, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *CatalogRepo) InsertLocation(ctx context.Context, l *catalog.Location) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO locations (id, name, type, description, current_location, schedule, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING updated_at`,
		l.ID, l.Name, l.Type, l.Description, l.CurrentLocation, l.Schedule, l.Phone, l.Status).
		Scan(&l.UpdatedAt)
}

func (r *CatalogRepo) UpdateLocation(ctx context.Context, l *catalog.Location) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE locations
		SET name = $1, type = $2, description = $3, current_location = $4,
		    schedule = $5, phone = $6, status = $7, updated_at = now()
		WHERE id = $8`,
		l.Name, l.Type, l.Description, l.CurrentLocation, l.Schedule, l.Phone, l.Status, l.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) DeleteLocation(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) CountMenuItems(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n)
	return n, err
}

func (r *CatalogRepo) CountLocations(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n)
	return n, err
}
