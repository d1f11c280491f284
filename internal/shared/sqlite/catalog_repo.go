package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/curbsidehq/curbside/internal/domain/catalog"
	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
)

// CatalogRepo implements ports.CatalogStore on SQLite.
type CatalogRepo struct {
	db *sql.DB
}

var _ ports.CatalogStore = (*CatalogRepo)(nil)

func NewCatalogRepo(d *DB) *CatalogRepo {
	return &CatalogRepo{db: d.db}
}

func (r *CatalogRepo) ListMenu(ctx context.Context) ([]catalog.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, price, category, emoji, available, image_url, created_at, updated_at
		FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) GetMenuItem(ctx context.Context, id int64) (*catalog.MenuItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, category, emoji, available, image_url, created_at, updated_at
		FROM menu_items WHERE id = ?`, id)
	m, err := scanMenuItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	return m, err
}

func (r *CatalogRepo) InsertMenuItem(ctx context.Context, m *catalog.MenuItem) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO menu_items (name, description, price, category, emoji, available, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Description, int64(m.Price), m.Category, m.Emoji, m.Available, m.ImageURL, now, now)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (r *CatalogRepo) UpdateMenuItem(ctx context.Context, m *catalog.MenuItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = ?, description = ?, price = ?, category = ?, emoji = ?,
		    available = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		m.Name, m.Description, int64(m.Price), m.Category, m.Emoji,
		m.Available, m.ImageURL, time.Now().UTC(), m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) DeleteMenuItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) ListLocations(ctx context.Context) ([]catalog.Location, error) {
	rows, err := r.db.QueryContext(ctx, `
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
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, description, current_location, schedule, phone, status, updated_at
		FROM locations WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &l.Type, &l.Description,
			&l.CurrentLocation, &l.Schedule, &l.Phone, &l.Status, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *CatalogRepo) InsertLocation(ctx context.Context, l *catalog.Location) error {
	l.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO locations (id, name, type, description, current_location, schedule, phone, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Type, l.Description, l.CurrentLocation, l.Schedule, l.Phone, l.Status, l.UpdatedAt)
	return err
}

func (r *CatalogRepo) UpdateLocation(ctx context.Context, l *catalog.Location) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE locations
		SET name = ?, type = ?, description = ?, current_location = ?,
		    schedule = ?, phone = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		l.Name, l.Type, l.Description, l.CurrentLocation,
		l.Schedule, l.Phone, l.Status, time.Now().UTC(), l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) DeleteLocation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) CountMenuItems(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n)
	return n, err
}

func (r *CatalogRepo) CountLocations(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n)
	return n, err
}

func scanMenuItem(s interface{ Scan(...any) error }) (*catalog.MenuItem, error) {
	var m catalog.MenuItem
	var price int64
	err := s.Scan(&m.ID, &m.Name, &m.Description, &price, &m.Category,
		&m.Emoji, &m.Available, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Price = orders.Money(price)
	return &m, nil
}
