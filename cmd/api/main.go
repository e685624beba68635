package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/ewilliams-labs/chorus/internal/adapters/blob"
	"github.com/ewilliams-labs/chorus/internal/adapters/rest"
	"github.com/ewilliams-labs/chorus/internal/adapters/sqlite"
	"github.com/ewilliams-labs/chorus/internal/config"
	"github.com/ewilliams-labs/chorus/internal/core/ports"
	"github.com/ewilliams-labs/chorus/internal/core/services"
	"github.com/ewilliams-labs/chorus/internal/worker"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "chorus",
	})

	app := &cli.Command{
		Name:    "chorus",
		Usage:   "Music catalog and playlist API",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd.String("config"))
					if err != nil {
						return err
					}
					return serve(ctx, cfg, logger)
				},
			},
			{
				Name:  "migrate",
				Usage: "Create or upgrade the database schema and exit",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd.String("config"))
					if err != nil {
						return err
					}
					adapter, err := sqlite.NewAdapter(cfg.Database.Path, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
					if err != nil {
						return fmt.Errorf("migrate: %w", err)
					}
					defer adapter.Close()
					logger.Info("schema is up to date", "path", cfg.Database.Path)
					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// loadConfig falls back to the embedded defaults when no file is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat("config.toml"); err == nil {
			path = "config.toml"
		} else {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// newBlobStore picks the storage backend from config.
func newBlobStore(cfg *config.Config) (ports.BlobStore, error) {
	switch cfg.Storage.Driver {
	case "local":
		return blob.NewLocal(cfg.Storage.Local.Root)
	case "gateway":
		gw := cfg.Storage.Gateway
		if gw.Endpoint == "" {
			return nil, errors.New("storage.gateway.endpoint is required for the gateway driver")
		}
		return blob.NewGateway(gw.Endpoint, gw.Container, gw.Token), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	adapter, err := sqlite.NewAdapter(cfg.Database.Path, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer adapter.Close()

	store, err := newBlobStore(cfg)
	if err != nil {
		return err
	}

	catalog := services.NewCatalog(adapter.Songs, store, logger)
	playlists := services.NewPlaylists(adapter.Playlists, adapter.Songs, logger)
	search := services.NewSearch(adapter.Songs)

	pool := worker.NewPool(adapter.Songs, store, logger, cfg.Worker.QueueSize)
	pool.Start(cfg.Worker.Workers)
	defer pool.Stop()

	handler := rest.NewHandler(catalog, playlists, search, store, pool, logger)
	handler.SetUploadLimit(cfg.Limits.UploadsPerMinute, cfg.Limits.UploadBurst)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	logger.Info("🎶 Chorus API is running", "addr", cfg.Addr(), "storage", cfg.Storage.Driver)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
