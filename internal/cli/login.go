package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/client"
)

func newLoginCmd() *cobra.Command {
	var server, email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a token",
		Long:  "Exchange email and password for a bearer token and store it for later commands. Missing values are read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), os.Stdin, server, email, password)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or http://localhost:8080)")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")

	return cmd
}

func runLogin(ctx context.Context, in io.Reader, serverFlag, email, password string) error {
	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	reader := bufio.NewReader(in)
	var err error
	if email == "" {
		if email, err = prompt(reader, "Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompt(reader, "Password: "); err != nil {
			return err
		}
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	resp, err := client.New(serverURL, "").Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.Token = resp.Token
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("✓ Logged in as %s (%s).\n", resp.User.Email, resp.User.Role)
	return nil
}

func prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// validateCredentials checks that both values are present and the email
// looks like one.
func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}
