// Package property provides the property domain model and data access.
package property

import (
	"database/sql"
	"errors"
	"time"

	"github.com/evcraddock/estatebi/internal/preprocess"
)

// ErrNotFound is returned when no property matches a lookup.
var ErrNotFound = errors.New("property not found")

// ErrNoChanges is returned by Update when no field was supplied.
var ErrNoChanges = errors.New("no valid fields to update")

// Property is a stored real-estate listing.
type Property struct {
	ID           int64     `json:"id"`
	PropertyCode string    `json:"property_code"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	RegionID     *int64    `json:"region_id"`
	RegionName   string    `json:"region_name,omitempty"`
	Pincode      string    `json:"pincode,omitempty"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Price        float64   `json:"price"`
	Sqft         int64     `json:"sqft"`
	Bedrooms     int64     `json:"bedrooms"`
	Bathrooms    float64   `json:"bathrooms"`
	YearBuilt    *int64    `json:"year_built"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FromRecord builds a Property from a preprocessed upload row.
func FromRecord(rec preprocess.Record, regionID *int64) *Property {
	return &Property{
		PropertyCode: rec.PropertyCode,
		Address:      rec.Address,
		City:         rec.City,
		RegionID:     regionID,
		Type:         string(rec.Type),
		Status:       string(rec.Status),
		Price:        rec.Price,
		Sqft:         rec.Sqft,
		Bedrooms:     rec.Bedrooms,
		Bathrooms:    rec.Bathrooms,
		YearBuilt:    rec.YearBuilt,
		Description:  rec.Description,
	}
}

// Changes holds a partial update. Nil fields are left untouched.
type Changes struct {
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	RegionID    *int64   `json:"region_id"`
	Type        *string  `json:"type"`
	Status      *string  `json:"status"`
	Price       *float64 `json:"price"`
	Sqft        *int64   `json:"sqft"`
	Bedrooms    *int64   `json:"bedrooms"`
	Bathrooms   *float64 `json:"bathrooms"`
	YearBuilt   *int64   `json:"year_built"`
	Description *string  `json:"description"`
}

// scanProperty scans a property from a database row.
func scanProperty(row interface{ Scan(...interface{}) error }) (*Property, error) {
	var p Property
	var regionID, yearBuilt sql.NullInt64

	err := row.Scan(
		&p.ID, &p.PropertyCode, &p.Address, &p.City, &regionID,
		&p.Type, &p.Status, &p.Price, &p.Sqft, &p.Bedrooms, &p.Bathrooms,
		&yearBuilt, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		&p.RegionName, &p.Pincode,
	)
	if err != nil {
		return nil, err
	}

	if regionID.Valid {
		p.RegionID = &regionID.Int64
	}
	if yearBuilt.Valid {
		p.YearBuilt = &yearBuilt.Int64
	}

	return &p, nil
}
