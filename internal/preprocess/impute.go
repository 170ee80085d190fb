package preprocess

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CodeGenerator produces property codes for rows that arrive without one.
type CodeGenerator interface {
	Generate(prefix string) string
}

// ClockCodes builds codes from a prefix and the last six digits of the
// current Unix millisecond. Successive calls never reuse a millisecond, so
// codes from one generator only repeat after a million calls.
type ClockCodes struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClockCodes returns a generator driven by the wall clock.
func NewClockCodes() *ClockCodes {
	return &ClockCodes{now: time.Now}
}

// Generate returns prefix followed by a six-digit suffix.
func (g *ClockCodes) Generate(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s%06d", prefix, ms%1000000)
}

// Imputer normalizes a raw row and fills its missing fields.
type Imputer struct {
	tables Tables
	codes  CodeGenerator
}

// NewImputer creates an Imputer. A nil generator falls back to ClockCodes.
func NewImputer(tables Tables, codes CodeGenerator) *Imputer {
	if codes == nil {
		codes = NewClockCodes()
	}
	return &Imputer{tables: tables, codes: codes}
}

// Preprocess normalizes the categorical fields of raw and imputes the rest.
func (im *Imputer) Preprocess(raw RawRecord) Record {
	rec := Record{
		City:   NormalizeCity(raw.Text("city")),
		Type:   NormalizeType(raw.Text("type")),
		Status: NormalizeStatus(raw.Text("status")),
	}
	im.Impute(&rec, raw)
	return rec
}

// Impute fills the non-categorical fields of rec from raw. City and Type
// must already be normalized since the price and area fallbacks key on them.
func (im *Imputer) Impute(rec *Record, raw RawRecord) {
	if price, ok := parseFloat(raw.Get("price")); ok && !zeroNumber(raw.Get("price")) {
		rec.Price = price
	} else {
		rec.Price = im.tables.MedianPrice(rec.City)
	}

	if sqft, ok := parseInt(raw.Get("sqft")); ok && !zeroNumber(raw.Get("sqft")) {
		rec.Sqft = sqft
	} else {
		rec.Sqft = im.tables.AverageSqft(rec.Type)
	}

	rec.Bedrooms, _ = parseInt(raw.Get("bedrooms"))
	rec.Bathrooms, _ = parseFloat(raw.Get("bathrooms"))

	rec.YearBuilt = nil
	if year, ok := parseInt(raw.Get("year_built")); ok && year != 0 {
		rec.YearBuilt = &year
	}

	rec.Region = raw.Text("region")
	if rec.Region == "" {
		rec.Region = "Unknown"
	}
	rec.Address = normalizeSpace(raw.Text("address"))
	rec.Description = raw.Text("description")

	rec.PropertyCode = raw.Text("property_code")
	if rec.PropertyCode == "" {
		rec.PropertyCode = im.codes.Generate(codePrefix(rec.City))
	}
}

// BatchPreprocess runs Preprocess over every row, preserving order.
func (im *Imputer) BatchPreprocess(raws []RawRecord) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, im.Preprocess(raw))
	}
	return out
}

func codePrefix(city string) string {
	if city == "" {
		return "UNK"
	}
	r := []rune(city)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

var (
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
)

// parseFloat reads a number from v. Strings are parsed from their longest
// numeric prefix, so "1500 sqft" yields 1500.
func parseFloat(v Value) (float64, bool) {
	if n, ok := v.Number(); ok {
		return n, true
	}
	m := leadingFloat.FindString(v.Text())
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// zeroNumber reports a numeric 0, which counts as missing. The string "0"
// is a value.
func zeroNumber(v Value) bool {
	n, ok := v.Number()
	return ok && n == 0
}

// parseInt reads an integer from v, truncating numbers and reading the
// leading digits of strings.
func parseInt(v Value) (int64, bool) {
	if n, ok := v.Number(); ok {
		return int64(n), true
	}
	m := leadingInt.FindString(v.Text())
	if m == "" {
		return 0, false
	}
	i, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}
