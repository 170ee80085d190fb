package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/ingest"
)

func newTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print the sample upload CSV",
		Long:  "Print the sample CSV showing the columns an upload may carry, or write it to --output.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func runTemplate(output string) error {
	data := ingest.Template()
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	fmt.Printf("✓ Template written to %s\n", output)
	return nil
}
