package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/web"
)

// Version is set at build time via -ldflags.
var Version = web.Version

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}
}
