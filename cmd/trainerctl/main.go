package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/trainer/internal/admin"
	"github.com/JonMunkholm/trainer/internal/cli"
	"github.com/JonMunkholm/trainer/internal/config"
	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/gateway"
	"github.com/JonMunkholm/trainer/internal/logging"
)

func main() {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	core.SetDisplayLocation(cfg.Display.Location())

	var pool *pgxpool.Pool
	defer func() {
		if pool != nil {
			pool.Close()
		}
	}()

	root := cli.NewRootCmd(func(opts cli.Options) (*cli.App, error) {
		level := cfg.Logging.Level
		if opts.Verbose {
			level = "debug"
		}
		logger := logging.SetupWriter(os.Stderr, level, cfg.Logging.Format)

		backend := gateway.Config{
			BaseURL:   cfg.Backend.BaseURL,
			Timeout:   cfg.Backend.Timeout,
			UserAgent: cfg.Backend.UserAgent,
		}
		if opts.BackendURL != "" {
			backend.BaseURL = opts.BackendURL
		}
		if opts.Timeout > 0 {
			backend.Timeout = opts.Timeout
		}
		client := gateway.New(backend, gateway.WithLogger(logger))

		var audit core.AuditStore = core.NewMemoryAuditStore(cfg.Audit.MemoryCapacity)
		if cfg.Database.Enabled() {
			ctx := context.Background()
			p, err := pgxpool.New(ctx, cfg.Database.URL)
			if err != nil {
				return nil, fmt.Errorf("connect audit database: %w", err)
			}
			store, err := core.OpenPostgresAuditStore(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("prepare audit schema: %w", err)
			}
			pool, audit = p, store
		}

		return &cli.App{
			Customers: client.Customers(),
			Trainings: client.Trainings(),
			Resetter:  admin.NewResetter(client, audit, logger),
			Audit:     audit,
			Logger:    logger,
		}, nil
	})

	if err := root.Execute(); err != nil {
		if pool != nil {
			pool.Close()
		}
		os.Exit(1)
	}
}
