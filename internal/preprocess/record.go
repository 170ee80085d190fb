// Package preprocess turns loosely typed upload rows into clean property records.
//
// A row passes through three stateless stages: normalization of the
// categorical fields (city, type, status), imputation of missing numeric
// fields from lookup tables, and validation. None of the stages touch the
// database; the ingest package owns persistence.
package preprocess

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PropertyType is the canonical property category.
type PropertyType string

const (
	Residential PropertyType = "Residential"
	Commercial  PropertyType = "Commercial"
	Land        PropertyType = "Land"
)

// ValidTypes lists the accepted property types in display order.
var ValidTypes = []PropertyType{Residential, Commercial, Land}

// Status is the canonical listing status.
type Status string

const (
	StatusActive  Status = "Active"
	StatusSold    Status = "Sold"
	StatusPending Status = "Pending"
)

// ValidStatuses lists the accepted statuses in display order.
var ValidStatuses = []Status{StatusActive, StatusSold, StatusPending}

type valueKind uint8

const (
	kindNull valueKind = iota
	kindString
	kindNumber
)

// Value is one untyped field of an uploaded row: a string, a number or null.
type Value struct {
	kind valueKind
	str  string
	num  float64
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: kindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: kindNumber, num: f} }

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool { return v.kind == kindNull }

// Number returns the numeric payload and whether v is a number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == kindNumber
}

// Text returns the value as trimmed text. Numbers are rendered in their
// shortest form; null yields "".
func (v Value) Text() string {
	switch v.kind {
	case kindString:
		return strings.TrimSpace(v.str)
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON encodes the value as a JSON string, number or null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindString:
		return json.Marshal(v.str)
	case kindNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar. Booleans and nested structures are
// kept as their literal text.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "" || raw == "null":
		*v = Null()
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*v = Number(f)
	default:
		*v = String(raw)
	}
	return nil
}

// RawRecord is one uploaded row keyed by column name.
type RawRecord map[string]Value

// Get returns the value stored under key, or null when absent.
func (r RawRecord) Get(key string) Value {
	if r == nil {
		return Null()
	}
	return r[key]
}

// Text is shorthand for r.Get(key).Text().
func (r RawRecord) Text(key string) string {
	return r.Get(key).Text()
}

// Record is a row after normalization and imputation. City is empty when
// the source row had none; every other field always carries a typed value,
// except YearBuilt which stays nil when unknown.
type Record struct {
	PropertyCode string       `json:"property_code"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	Region       string       `json:"region"`
	Type         PropertyType `json:"type"`
	Status       Status       `json:"status"`
	Price        float64      `json:"price"`
	Sqft         int64        `json:"sqft"`
	Bedrooms     int64        `json:"bedrooms"`
	Bathrooms    float64      `json:"bathrooms"`
	YearBuilt    *int64       `json:"year_built"`
	Description  string       `json:"description"`
}
