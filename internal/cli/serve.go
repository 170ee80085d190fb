package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/estatebi/internal/auth"
	"github.com/evcraddock/estatebi/internal/config"
	"github.com/evcraddock/estatebi/internal/db"
	"github.com/evcraddock/estatebi/internal/events"
	"github.com/evcraddock/estatebi/internal/logging"
	"github.com/evcraddock/estatebi/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       string
		dev        bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API server. Settings come from .env, an optional YAML file and ESTATEBI_* variables; flags override them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if port != "" {
				cfg.Port = port
			}
			if dev {
				cfg.DevMode = true
			}
			if cmd.Flags().Changed("driver") {
				cfg.DBDriver = flagDriver
			}
			if flagDB != "" {
				cfg.DSN = flagDB
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (default: $ESTATEBI_CONFIG)")
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (default: 8080)")
	cmd.Flags().BoolVar(&dev, "dev", false, "development mode (text logs, default JWT secret)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.Setup(cfg.DevMode)

	database, err := db.OpenDriver(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("starting event publisher: %w", err)
		}
		publisher = p
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("closing event publisher", "error", err)
		}
	}()

	srv := web.NewServer(database, web.Options{
		Issuer:         auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		Publisher:      publisher,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigin:     cfg.CORSOrigin,
	})

	slog.Info("starting estatebi",
		"version", Version,
		"driver", cfg.DBDriver,
		"dev", cfg.DevMode,
		"events", cfg.AMQPURL != "",
	)
	return srv.ListenAndServe(ctx, net.JoinHostPort("", cfg.Port))
}
