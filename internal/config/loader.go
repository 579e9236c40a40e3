package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/example/bookcafe-client/internal/logging"
)

// Store selects where the client persists its session.
type Store string

const (
	StoreSQLite Store = "sqlite"
	StoreRedis  Store = "redis"
	StoreMemory Store = "memory"
)

// Config captures environment driven configuration values for the BookCafe client.
type Config struct {
	APIBaseURL      string
	Store           Store
	SQLiteDSN       string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisPrefix     string
	StorageSecret   string
	SuperAdminEmail string
	RequestTimeout  time.Duration
	LogLevel        slog.Level
}

const envPrefix = "BOOKCAFE"

// environment is the raw shape decoded by envconfig before validation.
type environment struct {
	APIBaseURL      string        `envconfig:"API_BASE_URL"`
	Store           string        `envconfig:"STORE" default:"sqlite"`
	SQLiteDSN       string        `envconfig:"SQLITE_DSN" default:"file:bookcafe.db"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix     string        `envconfig:"REDIS_PREFIX" default:"bookcafe:"`
	StorageSecret   string        `envconfig:"STORAGE_SECRET"`
	SuperAdminEmail string        `envconfig:"SUPER_ADMIN_EMAIL" default:"superadmin@bookcafe.com"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"warn"`
}

func key(name string) string {
	return envPrefix + "_" + name
}

// Load parses configuration values from the current process environment.
//
// Each file in envFiles is read with godotenv first; variables already set in
// the environment win, and missing files are skipped. Optional fields get
// defaults, and every missing or invalid variable is reported by name.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", file, err)
		}
	}

	var env environment
	if err := envconfig.Process(envPrefix, &env); err != nil {
		var parseErr *envconfig.ParseError
		if errors.As(err, &parseErr) {
			return Config{}, fmt.Errorf("invalid environment variable values: %s", parseErr.KeyName)
		}
		return Config{}, err
	}

	cfg := Config{
		APIBaseURL:      strings.TrimSpace(env.APIBaseURL),
		Store:           Store(strings.ToLower(strings.TrimSpace(env.Store))),
		SQLiteDSN:       strings.TrimSpace(env.SQLiteDSN),
		RedisAddr:       strings.TrimSpace(env.RedisAddr),
		RedisPassword:   env.RedisPassword,
		RedisDB:         env.RedisDB,
		RedisPrefix:     env.RedisPrefix,
		StorageSecret:   strings.TrimSpace(env.StorageSecret),
		SuperAdminEmail: strings.TrimSpace(env.SuperAdminEmail),
		RequestTimeout:  env.RequestTimeout,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if cfg.APIBaseURL == "" {
		missing = append(missing, key("API_BASE_URL"))
	} else if !absoluteHTTPURL(cfg.APIBaseURL) {
		invalid = append(invalid, key("API_BASE_URL"))
	}

	switch cfg.Store {
	case StoreSQLite:
		if cfg.SQLiteDSN == "" {
			invalid = append(invalid, key("SQLITE_DSN"))
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			missing = append(missing, key("REDIS_ADDR"))
		}
		if cfg.RedisDB < 0 {
			invalid = append(invalid, key("REDIS_DB"))
		}
	case StoreMemory:
	default:
		invalid = append(invalid, key("STORE"))
	}

	if cfg.RequestTimeout < 0 {
		invalid = append(invalid, key("REQUEST_TIMEOUT"))
	}

	level, err := logging.ParseLevel(env.LogLevel)
	if err != nil {
		invalid = append(invalid, key("LOG_LEVEL"))
	}
	cfg.LogLevel = level

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func absoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
