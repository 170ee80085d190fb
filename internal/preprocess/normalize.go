package preprocess

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var cityAliases = map[string]string{
	"chennai": "Chennai",
	"madras":  "Chennai",
	"salem":   "Salem",
	"selam":   "Salem",
}

var typeAliases = map[string]PropertyType{
	"residential": Residential,
	"flat":        Residential,
	"apartment":   Residential,
	"house":       Residential,
	"villa":       Residential,
	"commercial":  Commercial,
	"office":      Commercial,
	"shop":        Commercial,
	"showroom":    Commercial,
	"land":        Land,
	"plot":        Land,
	"site":        Land,
}

var statusAliases = map[string]Status{
	"active":         StatusActive,
	"available":      StatusActive,
	"for sale":       StatusActive,
	"sold":           StatusSold,
	"completed":      StatusSold,
	"pending":        StatusPending,
	"under contract": StatusPending,
	"in escrow":      StatusPending,
}

// NormalizeCity maps known aliases to their canonical city and title-cases
// anything else. It returns "" for blank input.
func NormalizeCity(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if city, ok := cityAliases[key]; ok {
		return city
	}

	words := strings.Fields(key)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NormalizeType maps free-text property categories onto PropertyType.
// Unknown or blank input defaults to Residential.
func NormalizeType(raw string) PropertyType {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return Residential
}

// NormalizeStatus maps free-text listing states onto Status.
// Unknown or blank input defaults to Active.
func NormalizeStatus(raw string) Status {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusActive
}

// normalizeSpace trims s and collapses internal whitespace runs.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
