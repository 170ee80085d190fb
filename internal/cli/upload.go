package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a property file to the server",
		Long:  "Send a CSV, JSON or XLSX file to a running server, which cleans and stores it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), args[0])
		},
	}
}

func runUpload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	report, err := newAPIClient().Upload(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(report)
	}
	return printReport(report)
}
