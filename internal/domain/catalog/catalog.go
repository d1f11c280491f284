// Package catalog holds the menu and pickup-location records. These are
// plain CRUD collaborators; orders reference a location id as an opaque
// string and deleting a location never touches historic orders.
package catalog

import (
	"time"

	"github.com/curbsidehq/curbside/internal/domain/orders"
)

// MenuItem is a sellable item shown on the public menu.
type MenuItem struct {
	ID          int64
	Name        string
	Description *string
	Price       orders.Money
	Category    string
	Emoji       *string
	Available   bool
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Location is a pickup spot; a food truck usually has one or two.
type Location struct {
	ID              string
	Name            string
	Type            string // "mobile" or "fixed"
	Description     *string
	CurrentLocation *string
	Schedule        *string
	Phone           *string
	Status          string // "active" or "inactive"
	UpdatedAt       time.Time
}
