package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration read from the environment
type Config struct {
	Port        string
	GRPCPort    string
	Environment string

	DBDriver    string
	SQLiteFile  string
	DatabaseURL string

	NATSURL     string
	NATSSubject string
	NATSStream  string

	ClickHouse ClickHouseConfig
	Authentik  AuthentikConfig

	PlayerSource  string
	PlayerRefresh time.Duration
}

// ClickHouseConfig is the connection configuration for draft analytics
type ClickHouseConfig struct {
	Addr     string
	Database string
	User     string
	Password string
}

// AuthentikConfig is the OAuth2 client configuration for Authentik
type AuthentikConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AppSlug      string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment, applying defaults
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		GRPCPort:    getEnv("GRPC_PORT", "50051"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBDriver:    getEnv("DB_DRIVER", "memory"),
		SQLiteFile:  getEnv("SQLITE_FILE", "dev.sqlite"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: getEnv("NATS_SUBJECT", "league.events"),
		NATSStream:  getEnv("NATS_STREAM", "LEAGUE_EVENTS"),

		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("CLICKHOUSE_DB", "default"),
			User:     getEnv("CLICKHOUSE_USER", "default"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		},
		Authentik: AuthentikConfig{
			BaseURL:      strings.TrimRight(os.Getenv("AUTHENTIK_BASE_URL"), "/"),
			ClientID:     os.Getenv("AUTHENTIK_CLIENT_ID"),
			ClientSecret: os.Getenv("AUTHENTIK_CLIENT_SECRET"),
			RedirectURL:  getEnv("AUTHENTIK_REDIRECT_URL", "http://localhost:3000/auth/callback"),
			AppSlug:      getEnv("AUTHENTIK_APP_SLUG", "blt-leagues"),
		},

		PlayerSource: strings.ToLower(getEnv("PLAYER_SOURCE", "static")),
	}

	refresh, err := time.ParseDuration(getEnv("PLAYER_REFRESH", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAYER_REFRESH: %w", err)
	}
	cfg.PlayerRefresh = refresh

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether local development fallbacks (embedded NATS,
// mock auth, no ClickHouse) should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// Validate checks combinations that cannot work at startup
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER: %s (valid: memory, sqlite, postgres)", c.DBDriver)
	}

	switch c.PlayerSource {
	case "static", "sleeper":
	default:
		return fmt.Errorf("unknown PLAYER_SOURCE: %s (valid: static, sleeper)", c.PlayerSource)
	}

	if !c.IsDevelopment() {
		a := c.Authentik
		if a.BaseURL == "" || a.ClientID == "" || a.ClientSecret == "" {
			return errors.New("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required outside development")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
