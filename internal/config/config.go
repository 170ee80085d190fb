// Package config loads server configuration from an optional .env file,
// an optional YAML file and ESTATEBI_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/evcraddock/estatebi/internal/db"
)

// Configuration validation errors.
var (
	ErrInvalidPort        = errors.New("port is required")
	ErrInvalidDriver      = errors.New("db_driver must be sqlite3 or mysql")
	ErrMissingDSN         = errors.New("dsn is required for mysql")
	ErrMissingJWTSecret   = errors.New("jwt_secret is required outside dev mode")
	ErrInvalidJWTExpiry   = errors.New("jwt_expiry must be positive")
	ErrInvalidUploadLimit = errors.New("max_upload_bytes must be positive")
)

// Defaults.
const (
	DefaultPort           = "8080"
	DefaultJWTExpiry      = 24 * time.Hour
	DefaultMaxUploadBytes = 10 << 20
	DefaultAMQPExchange   = "estatebi.uploads"

	devJWTSecret = "estatebi-dev-secret"
)

// Config holds the server configuration.
type Config struct {
	Port           string        `yaml:"port"`
	DBDriver       string        `yaml:"db_driver"`
	DSN            string        `yaml:"dsn"`
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTExpiry      time.Duration `yaml:"jwt_expiry"`
	DevMode        bool          `yaml:"dev_mode"`
	CORSOrigin     string        `yaml:"cors_origin"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	AMQPURL        string        `yaml:"amqp_url"`
	AMQPExchange   string        `yaml:"amqp_exchange"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:           DefaultPort,
		DBDriver:       db.DriverSQLite,
		JWTExpiry:      DefaultJWTExpiry,
		CORSOrigin:     "*",
		MaxUploadBytes: DefaultMaxUploadBytes,
		AMQPExchange:   DefaultAMQPExchange,
	}
}

// Load builds the configuration. yamlPath may be empty; when it is, the
// ESTATEBI_CONFIG variable is consulted. A missing .env file is not an error.
func Load(yamlPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := Default()

	if yamlPath == "" {
		yamlPath = os.Getenv("ESTATEBI_CONFIG")
	}
	if yamlPath != "" {
		if err := cfg.loadFile(yamlPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.DevMode && cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.DBDriver == db.DriverSQLite && cfg.DSN == "" {
		path, err := db.DefaultPath()
		if err != nil {
			return nil, err
		}
		cfg.DSN = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "ESTATEBI_PORT")
	setString(&c.DBDriver, "ESTATEBI_DB_DRIVER")
	setString(&c.DSN, "ESTATEBI_DSN")
	setString(&c.JWTSecret, "ESTATEBI_JWT_SECRET")
	setString(&c.CORSOrigin, "ESTATEBI_CORS_ORIGIN")
	setString(&c.AMQPURL, "ESTATEBI_AMQP_URL")
	setString(&c.AMQPExchange, "ESTATEBI_AMQP_EXCHANGE")

	if v := os.Getenv("ESTATEBI_DEV_MODE"); v != "" {
		c.DevMode = v == "true"
	}
	if v := os.Getenv("ESTATEBI_JWT_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing ESTATEBI_JWT_EXPIRY: %w", err)
		}
		c.JWTExpiry = d
	}
	if v := os.Getenv("ESTATEBI_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing ESTATEBI_MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Port == "" {
		return ErrInvalidPort
	}
	switch c.DBDriver {
	case db.DriverSQLite:
	case db.DriverMySQL:
		if c.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.DBDriver)
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.JWTExpiry <= 0 {
		return ErrInvalidJWTExpiry
	}
	if c.MaxUploadBytes <= 0 {
		return ErrInvalidUploadLimit
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
