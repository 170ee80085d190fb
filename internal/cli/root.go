// Package cli defines the cobra command tree for estatebi.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/client"
	"github.com/evcraddock/estatebi/internal/db"
)

var (
	flagFormat string
	flagDB     string
	flagDriver string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "estatebi",
		Short:         "Real-estate business intelligence backend",
		Long:          "EstateBI ingests property files, stores them and serves the dashboard API. Import files locally or talk to a running server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "database path or DSN (default: ~/.estatebi/estatebi.db)")
	root.PersistentFlags().StringVar(&flagDriver, "driver", db.DriverSQLite, "database driver (sqlite3|mysql)")

	root.AddCommand(
		newServeCmd(),
		newImportCmd(),
		newUploadCmd(),
		newTemplateCmd(),
		newHistoryCmd(),
		newPropertiesCmd(),
		newUserCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the database named by --driver and --db, defaulting to the
// SQLite file under the home directory.
func openDB() (*sql.DB, error) {
	dsn := flagDB
	if dsn == "" {
		if flagDriver != db.DriverSQLite {
			return nil, fmt.Errorf("--db is required for driver %s", flagDriver)
		}
		var err error
		dsn, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.OpenDriver(flagDriver, dsn)
}

// newAPIClient creates an HTTP client for the EstateBI API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
