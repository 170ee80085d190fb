package preprocess

// Dedupe keeps the first record for each property code, preserving order.
// Records without a code are always kept.
func Dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.PropertyCode != "" {
			if seen[r.PropertyCode] {
				continue
			}
			seen[r.PropertyCode] = true
		}
		out = append(out, r)
	}
	return out
}
