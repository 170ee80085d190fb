// Package region stores the named localities properties belong to.
package region

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no region matches a lookup.
var ErrNotFound = errors.New("region not found")

// Region is a locality within a city. Name and city together are unique.
type Region struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	State     string    `json:"state,omitempty"`
	Pincode   string    `json:"pincode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository provides access to regions.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a region repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a region and returns its ID.
func (r *Repository) Create(ctx context.Context, name, city string) (int64, error) {
	if name == "" || city == "" {
		return 0, fmt.Errorf("region name and city are required")
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO regions (name, city) VALUES (?, ?)",
		name, city,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting region %s/%s: %w", city, name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting insert id: %w", err)
	}
	return id, nil
}

// GetByNameCity returns the ID of the region with the given name in city.
func (r *Repository) GetByNameCity(ctx context.Context, name, city string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM regions WHERE name = ? AND city = ?",
		name, city,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s/%s", ErrNotFound, city, name)
	}
	if err != nil {
		return 0, fmt.Errorf("getting region %s/%s: %w", city, name, err)
	}
	return id, nil
}

// List returns all regions ordered by city then name.
func (r *Repository) List(ctx context.Context) (regions []*Region, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, city, state, pincode, created_at FROM regions ORDER BY city, name",
	)
	if err != nil {
		return nil, fmt.Errorf("listing regions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var rg Region
		if err := rows.Scan(&rg.ID, &rg.Name, &rg.City, &rg.State, &rg.Pincode, &rg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}
		regions = append(regions, &rg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating regions: %w", err)
	}

	return regions, nil
}

// Count returns the number of regions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM regions").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting regions: %w", err)
	}
	return n, nil
}
