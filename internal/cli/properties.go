package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/client"
)

func newPropertiesCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"list"},
		Short:   "List stored properties",
		Long:    "List properties from the server, optionally filtered by city, type and status.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProperties(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.City, "city", "", "only properties in this city")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only this type (Residential|Commercial|Land)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only this status (Active|Sold|Pending)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of properties (server default: 50)")

	return cmd
}

func runProperties(ctx context.Context, opts client.ListOptions) error {
	props, err := newAPIClient().ListProperties(ctx, opts)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(props)
	}
	return printPropertyTable(props)
}
