package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/auth"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts in the local database",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Long:  "Create an account directly in the database. Use this to bootstrap the first admin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAdd(cmd.Context(), name, email, password, role)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", auth.RoleAnalyst, "role (admin|analyst)")

	return cmd
}

func runUserAdd(ctx context.Context, name, email, password, role string) error {
	if role != auth.RoleAdmin && role != auth.RoleAnalyst {
		return fmt.Errorf("invalid role %q (must be admin or analyst)", role)
	}
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	u, err := auth.NewUserStore(database).Create(ctx, name, email, password, role)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(u)
	}
	fmt.Printf("✓ User #%d created: %s <%s> (%s)\n", u.ID, u.Name, u.Email, u.Role)
	return nil
}
