package preprocess

import (
	"fmt"
	"time"
)

// MinYearBuilt is the earliest accepted construction year.
const MinYearBuilt = 1800

// ValidationResult lists every rule a record broke.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validator checks preprocessed records against the property rules.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator using the wall clock for year checks.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// Validate collects all rule violations of rec.
func (v *Validator) Validate(rec Record) ValidationResult {
	errs := []string{}

	if rec.City == "" {
		errs = append(errs, "City is required")
	}
	if !(rec.Price > 0) {
		errs = append(errs, "Price must be a positive number")
	}
	if rec.Type != "" && !validType(rec.Type) {
		errs = append(errs, fmt.Sprintf("Invalid type: %s. Must be one of: Residential, Commercial, Land", rec.Type))
	}
	if rec.Status != "" && !validStatus(rec.Status) {
		errs = append(errs, fmt.Sprintf("Invalid status: %s. Must be one of: Active, Sold, Pending", rec.Status))
	}
	if rec.Sqft < 0 {
		errs = append(errs, "Square footage cannot be negative")
	}
	if rec.Bedrooms < 0 {
		errs = append(errs, "Bedrooms cannot be negative")
	}
	if rec.YearBuilt != nil {
		maxYear := int64(v.now().Year() + 1)
		if *rec.YearBuilt < MinYearBuilt || *rec.YearBuilt > maxYear {
			errs = append(errs, "Invalid year built")
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validType(t PropertyType) bool {
	for _, vt := range ValidTypes {
		if t == vt {
			return true
		}
	}
	return false
}

func validStatus(s Status) bool {
	for _, vs := range ValidStatuses {
		if s == vs {
			return true
		}
	}
	return false
}
