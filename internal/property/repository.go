package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Repository provides CRUD operations for properties.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const insertSQL = `INSERT INTO properties
	(property_code, address, city, region_id, type, status, price, sqft, bedrooms, bathrooms, year_built, description)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const overwriteSQL = `UPDATE properties SET
	address = ?, city = ?, region_id = ?, type = ?, status = ?, price = ?,
	sqft = ?, bedrooms = ?, bathrooms = ?, year_built = ?, description = ?,
	updated_at = CURRENT_TIMESTAMP
	WHERE property_code = ?`

const selectSQL = `SELECT p.id, p.property_code, p.address, p.city, p.region_id,
	p.type, p.status, p.price, p.sqft, p.bedrooms, p.bathrooms,
	p.year_built, COALESCE(p.description, ''), p.created_at, p.updated_at,
	COALESCE(r.name, ''), COALESCE(r.pincode, '')
	FROM properties p
	LEFT JOIN regions r ON p.region_id = r.id`

// Insert adds a new property and returns it with its generated ID.
func (r *Repository) Insert(ctx context.Context, p *Property) (*Property, error) {
	result, err := r.db.ExecContext(ctx, insertSQL,
		p.PropertyCode, p.Address, p.City, p.RegionID,
		p.Type, p.Status, p.Price, p.Sqft, p.Bedrooms, p.Bathrooms,
		p.YearBuilt, p.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting property %s: %w", p.PropertyCode, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Upsert overwrites the mutable fields of the property sharing p's code,
// or inserts p when no such property exists. It reports whether a new row
// was created.
func (r *Repository) Upsert(ctx context.Context, p *Property) (bool, error) {
	result, err := r.db.ExecContext(ctx, overwriteSQL,
		p.Address, p.City, p.RegionID, p.Type, p.Status, p.Price,
		p.Sqft, p.Bedrooms, p.Bathrooms, p.YearBuilt, p.Description,
		p.PropertyCode,
	)
	if err != nil {
		return false, fmt.Errorf("updating property %s: %w", p.PropertyCode, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := r.db.ExecContext(ctx, insertSQL,
		p.PropertyCode, p.Address, p.City, p.RegionID,
		p.Type, p.Status, p.Price, p.Sqft, p.Bedrooms, p.Bathrooms,
		p.YearBuilt, p.Description,
	); err != nil {
		return false, fmt.Errorf("inserting property %s: %w", p.PropertyCode, err)
	}
	return true, nil
}

// GetByID returns a property by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Property, error) {
	row := r.db.QueryRowContext(ctx, selectSQL+" WHERE p.id = ?", id)

	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %d: %w", id, err)
	}

	return p, nil
}

// GetByCode returns a property by its business code.
func (r *Repository) GetByCode(ctx context.Context, code string) (*Property, error) {
	row := r.db.QueryRowContext(ctx, selectSQL+" WHERE p.property_code = ?", code)

	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", code, err)
	}

	return p, nil
}

// ListOptions controls filtering for List. Zero values mean no filter.
type ListOptions struct {
	City     string
	Type     string
	Status   string
	RegionID int64
	Limit    int
	Offset   int
}

// DefaultListLimit is used when ListOptions.Limit is not positive.
const DefaultListLimit = 50

// List returns properties newest first, optionally filtered.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*Property, error) {
	query := selectSQL
	var args []interface{}
	var conditions []string

	if opts.City != "" {
		conditions = append(conditions, "p.city = ?")
		args = append(args, opts.City)
	}
	if opts.Type != "" {
		conditions = append(conditions, "p.type = ?")
		args = append(args, opts.Type)
	}
	if opts.Status != "" {
		conditions = append(conditions, "p.status = ?")
		args = append(args, opts.Status)
	}
	if opts.RegionID != 0 {
		conditions = append(conditions, "p.region_id = ?")
		args = append(args, opts.RegionID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	query += " ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	return r.query(ctx, query, args...)
}

// SearchLimit caps the number of rows returned by Search.
const SearchLimit = 20

// Search matches term against code, address, city and description.
func (r *Repository) Search(ctx context.Context, term string) ([]*Property, error) {
	like := "%" + term + "%"
	query := selectSQL + ` WHERE p.property_code LIKE ? OR p.address LIKE ?
		OR p.city LIKE ? OR p.description LIKE ?
		ORDER BY p.id LIMIT ?`
	return r.query(ctx, query, like, like, like, like, SearchLimit)
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) (properties []*Property, err error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	return properties, nil
}

// Update applies the non-nil fields of c to property id.
func (r *Repository) Update(ctx context.Context, id int64, c Changes) error {
	var sets []string
	var args []interface{}

	add := func(column string, v interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}
	if c.Address != nil {
		add("address", *c.Address)
	}
	if c.City != nil {
		add("city", *c.City)
	}
	if c.RegionID != nil {
		add("region_id", *c.RegionID)
	}
	if c.Type != nil {
		add("type", *c.Type)
	}
	if c.Status != nil {
		add("status", *c.Status)
	}
	if c.Price != nil {
		add("price", *c.Price)
	}
	if c.Sqft != nil {
		add("sqft", *c.Sqft)
	}
	if c.Bedrooms != nil {
		add("bedrooms", *c.Bedrooms)
	}
	if c.Bathrooms != nil {
		add("bathrooms", *c.Bathrooms)
	}
	if c.YearBuilt != nil {
		add("year_built", *c.YearBuilt)
	}
	if c.Description != nil {
		add("description", *c.Description)
	}

	if len(sets) == 0 {
		return ErrNoChanges
	}

	args = append(args, id)
	result, err := r.db.ExecContext(ctx,
		"UPDATE properties SET "+strings.Join(sets, ", ")+", updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %d: %w", id, ErrNotFound)
	}

	return nil
}

// Delete removes a property by ID. Transactions cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %d: %w", id, ErrNotFound)
	}

	return nil
}

// Count returns the number of stored properties.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return n, nil
}
