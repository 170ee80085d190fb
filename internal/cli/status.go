package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks if the stored token is valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

func runStatus(ctx context.Context) error {
	serverURL := getServerURL()
	token := getToken()

	fmt.Printf("Server:  %s\n", serverURL)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c := client.New(serverURL, token)
	if err := c.Health(ctx); err != nil {
		fmt.Printf("Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}

	if token == "" {
		fmt.Println("Status:  ✓ connected, not logged in")
		fmt.Println("\nRun 'estatebi login' to authenticate.")
		return nil
	}

	me, err := c.Me(ctx)
	if err != nil {
		fmt.Printf("Status:  ✗ token rejected (%v)\n", err)
		fmt.Println("\nRun 'estatebi login' to re-authenticate.")
		return nil
	}

	fmt.Printf("User:    %s <%s> (%s)\n", me.Name, me.Email, me.Role)
	fmt.Println("Status:  ✓ connected and authenticated")
	return nil
}
