package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recent uploads",
		Long:  "List the most recent uploads recorded by the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context())
		},
	}
}

func runHistory(ctx context.Context) error {
	entries, err := newAPIClient().UploadHistory(ctx)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(entries)
	}
	return printHistoryTable(entries)
}
