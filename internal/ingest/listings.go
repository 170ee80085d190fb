package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/evcraddock/estatebi/internal/preprocess"
)

// listingColumns names the columns read from a scraped listing export.
// Positions are used when the header does not name a column.
var listingColumns = []struct {
	names    []string
	position int
}{
	{[]string{"name"}, 0},
	{[]string{"title"}, 1},
	{[]string{"price"}, 2},
	{[]string{"location"}, 3},
	{[]string{"sqft", "area", "total_sqft"}, 4},
	{[]string{"baths", "bathrooms", "bathroom"}, 7},
}

var bhkPattern = regexp.MustCompile(`(?i)(\d+)\s*BHK`)

// ListingResult is the outcome of reading a listing export.
type ListingResult struct {
	Records []preprocess.RawRecord
	Skipped int
}

// ReadListings converts a scraped listing CSV (name, title, price with
// Cr/L suffixes, free-text location) into upload rows. Rows without a
// parseable price are skipped. fallbackCity is used when the location
// carries no usable city.
func ReadListings(r io.Reader, fallbackCity string) (*ListingResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &ListingResult{Records: []preprocess.RawRecord{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrParse, err)
	}
	idx := listingIndexes(cleanHeader(header))

	res := &ListingResult{Records: []preprocess.RawRecord{}}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if len(row) < 5 {
			res.Skipped++
			continue
		}

		get := func(col int) string {
			i := idx[col]
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		price, ok := ParseRupees(get(2))
		if !ok {
			res.Skipped++
			continue
		}

		name, title, location := get(0), get(1), get(3)
		rec := preprocess.RawRecord{
			"address":     preprocess.String(truncateRunes(location, 250)),
			"city":        preprocess.String(ExtractCity(location, fallbackCity)),
			"region":      preprocess.String(locality(location)),
			"price":       preprocess.Number(price),
			"sqft":        preprocess.String(get(4)),
			"bedrooms":    preprocess.Number(float64(ExtractBHK(title))),
			"bathrooms":   preprocess.String(get(5)),
			"description": preprocess.String(truncateRunes(name+" - "+title, 200)),
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

func listingIndexes(header []string) []int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(h)] = i
	}

	idx := make([]int, len(listingColumns))
	for c, col := range listingColumns {
		idx[c] = -1
		for _, name := range col.names {
			if i, ok := pos[name]; ok {
				idx[c] = i
				break
			}
		}
		if idx[c] < 0 && col.position < len(header) {
			idx[c] = col.position
		}
	}
	return idx
}

// ParseRupees reads prices such as "₹1.99 Cr", "₹48 L" or "4500000".
// It reports false for empty, zero or unparseable input.
func ParseRupees(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "₹", ""), ",", ""))
	if s == "" {
		return 0, false
	}

	multiplier := 1.0
	lower := strings.ToLower(s)
	for _, unit := range []struct {
		suffix string
		factor float64
	}{
		{"crore", 1e7}, {"cr", 1e7},
		{"lakh", 1e5}, {"lac", 1e5}, {"l", 1e5},
	} {
		if strings.HasSuffix(lower, unit.suffix) {
			multiplier = unit.factor
			s = strings.TrimSpace(s[:len(s)-len(unit.suffix)])
			break
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f * multiplier, true
}

// ExtractBHK reads the bedroom count from titles like "3 BHK Flat".
// It returns 2 when the title has none.
func ExtractBHK(title string) int64 {
	m := bhkPattern.FindStringSubmatch(title)
	if m == nil {
		return 2
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 2
	}
	return n
}

// ExtractCity takes the last comma-separated part of a location, ignoring
// anything after the first period.
func ExtractCity(location, fallback string) string {
	clean, _, _ := strings.Cut(location, ".")
	parts := strings.Split(clean, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" || len(last) >= 50 || strings.Contains(last, "BHK") || strings.Contains(last, "Property") {
		return fallback
	}
	return last
}

func locality(location string) string {
	first, _, found := strings.Cut(location, ",")
	if !found {
		return ""
	}
	return strings.TrimSpace(first)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
