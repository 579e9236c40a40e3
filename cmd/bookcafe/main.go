package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/bookcafe-client/internal/application"
	"github.com/example/bookcafe-client/internal/cli"
	"github.com/example/bookcafe-client/internal/config"
	bchttp "github.com/example/bookcafe-client/internal/http"
	"github.com/example/bookcafe-client/internal/persistence"
	"github.com/example/bookcafe-client/internal/persistence/redis"
	"github.com/example/bookcafe-client/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run loads configuration, wires the client and executes args. Logs go to
// stderr so stdout only carries what the user asked for.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cli.ExitUsage
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "store", cfg.Store, "error", err)
		return cli.ExitFailure
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	var sealer *persistence.Sealer
	if cfg.StorageSecret != "" {
		if sealer, err = persistence.NewSealer(cfg.StorageSecret); err != nil {
			logger.Error("failed to prepare storage sealing", "error", err)
			return cli.ExitFailure
		}
	}

	var services *application.Services
	client, err := bchttp.NewClient(bchttp.Options{
		BaseURL: cfg.APIBaseURL,
		Tokens:  tokenSource(func() string { return services.Session.Token() }),
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create API client", "error", err)
		return cli.ExitFailure
	}

	services = application.NewServices(client, persistence.NewSessionRepository(store, sealer), application.ServicesConfig{
		SuperAdminEmail: cfg.SuperAdminEmail,
		Logger:          logger,
	})

	app, err := cli.New(cli.Options{
		Services: services,
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to start", "error", err)
		return cli.ExitFailure
	}
	return app.Run(ctx, args)
}

// openStore returns the configured session storage, migrated and ready.
func openStore(ctx context.Context, cfg config.Config) (persistence.KeyValueStore, error) {
	switch cfg.Store {
	case config.StoreRedis:
		return redis.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	case config.StoreMemory:
		return persistence.NewMemoryStore(), nil
	case config.StoreSQLite:
		storage, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(ctx); err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		return storage, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

type tokenSource func() string

func (f tokenSource) Token() string { return f() }
