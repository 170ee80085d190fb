package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"github.com/evcraddock/estatebi/internal/ingest"
	"github.com/evcraddock/estatebi/internal/property"
	"github.com/evcraddock/estatebi/internal/upload"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport prints an ingestion report in text format.
func printReport(r *ingest.BatchReport) error {
	fmt.Printf("%s: %s\n", r.Message, r.Filename)
	fmt.Printf("  Batch:     %s\n", r.BatchID)
	fmt.Printf("  Status:    %s\n", r.Status)
	fmt.Printf("  Total:     %d\n", r.Total)
	fmt.Printf("  Processed: %d\n", r.Processed)
	fmt.Printf("  Failed:    %d\n", r.Failed)

	if len(r.Errors) == 0 {
		return nil
	}

	fmt.Println("\nErrors:")
	for _, e := range r.Errors {
		msg := e.Error
		if len(e.Errors) > 0 {
			msg = strings.Join(e.Errors, "; ")
		}
		fmt.Printf("  line %d: %s\n", e.Line, msg)
	}
	if r.Failed > len(r.Errors) {
		fmt.Printf("  ... and %d more\n", r.Failed-len(r.Errors))
	}
	return nil
}

// printPropertyTable prints a list of properties as a formatted table.
func printPropertyTable(props []*property.Property) error {
	if len(props) == 0 {
		fmt.Println("No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tCODE\tCITY\tREGION\tTYPE\tSTATUS\tPRICE\tSQFT\tADDRESS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t----\t------\t----\t------\t-----\t----\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		region := p.RegionName
		if region == "" {
			region = "-"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t₹%s\t%d\t%s\n",
			p.ID, p.PropertyCode, p.City, truncate(region, 20), p.Type, p.Status,
			formatPrice(int64(p.Price)), p.Sqft, truncate(p.Address, 40)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d properties\n", len(props))
	return nil
}

// printHistoryTable prints upload history entries as a table.
func printHistoryTable(entries []upload.Entry) error {
	if len(entries) == 0 {
		fmt.Println("No uploads yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tWHEN\tFILE\tTYPE\tPROCESSED\tFAILED\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04"), truncate(e.Filename, 32), e.FileType,
			e.RecordsProcessed, e.RecordsFailed, e.Status); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	return w.Flush()
}

// printPreviewTable prints dry-run rows with their validation result.
func printPreviewTable(previews []recordPreview) error {
	if len(previews) == 0 {
		fmt.Println("No rows found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "CODE\tCITY\tREGION\tTYPE\tSTATUS\tPRICE\tSQFT\tRESULT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	valid := 0
	for _, p := range previews {
		rec := p.Record
		result := "ok"
		if p.Validation.Valid {
			valid++
		} else {
			result = truncate(strings.Join(p.Validation.Errors, "; "), 60)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t₹%s\t%d\t%s\n",
			rec.PropertyCode, rec.City, truncate(rec.Region, 20), rec.Type, rec.Status,
			formatPrice(int64(rec.Price)), rec.Sqft, result); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\n%d of %d rows valid\n", valid, len(previews))
	return nil
}

// formatPrice formats a rupee amount as a string with commas.
func formatPrice(rupees int64) string {
	s := fmt.Sprintf("%d", rupees)

	// Add commas
	if len(s) <= 3 {
		return s
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	return strings.Join(parts, ",")
}

// truncate shortens s to maxWidth display columns, adding "..." if
// truncated. Wide runes count as two columns.
func truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "...")
}
