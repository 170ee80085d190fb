package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/ingest"
	"github.com/evcraddock/estatebi/internal/preprocess"
)

type importOptions struct {
	dryRun   bool
	listings bool
	city     string
	userID   int64
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a property file into the local database",
		Long: `Parse a CSV, JSON or XLSX file and store its properties directly in the database.

With --listings the file is read as a scraped listing export (prices such as "₹1.2 Cr").
With --dry-run nothing is stored; the cleaned, de-duplicated rows are printed with their
validation result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "preview cleaned rows without storing them")
	cmd.Flags().BoolVar(&opts.listings, "listings", false, "read the file as a scraped listing export")
	cmd.Flags().StringVar(&opts.city, "city", "Chennai", "city used for listings whose location names none")
	cmd.Flags().Int64Var(&opts.userID, "user", 0, "user ID recorded in upload history (default: 1)")

	return cmd
}

func runImport(ctx context.Context, path string, opts importOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	up := ingest.Upload{
		Filename: filepath.Base(path),
		Data:     data,
		UserID:   opts.userID,
	}

	var records []preprocess.RawRecord
	if opts.listings {
		res, err := ingest.ReadListings(bytes.NewReader(data), opts.city)
		if err != nil {
			return err
		}
		if res.Skipped > 0 {
			fmt.Fprintf(os.Stderr, "skipped %d listings without a usable price\n", res.Skipped)
		}
		records = res.Records
		up.Kind = ingest.KindCSV
	} else {
		up.Kind, err = ingest.KindFromFilename(path)
		if err != nil {
			return err
		}
		records, err = ingest.Parse(up.Kind, data)
		if err != nil {
			return err
		}
	}

	if opts.dryRun {
		return previewImport(records)
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	report, err := ingest.New(database, nil).IngestRecords(ctx, up, records)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(report)
	}
	return printReport(report)
}

// previewImport prints what an import would store.
func previewImport(raws []preprocess.RawRecord) error {
	imputer := preprocess.NewImputer(preprocess.DefaultTables(), nil)
	validator := preprocess.NewValidator()

	records := preprocess.Dedupe(imputer.BatchPreprocess(raws))
	previews := make([]recordPreview, 0, len(records))
	for _, rec := range records {
		previews = append(previews, recordPreview{Record: rec, Validation: validator.Validate(rec)})
	}

	if isJSON() {
		return printJSON(previews)
	}
	if dropped := len(raws) - len(records); dropped > 0 {
		fmt.Printf("%d duplicate rows dropped\n\n", dropped)
	}
	return printPreviewTable(previews)
}

type recordPreview struct {
	Record     preprocess.Record           `json:"record"`
	Validation preprocess.ValidationResult `json:"validation"`
}
