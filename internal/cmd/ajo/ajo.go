// Package ajo wires the savings engine together and serves its MCP tool
// surface over stdio.
package ajo

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group/service"
	ajomcp "github.com/ajofund/ajo/internal/mcp"
	"github.com/ajofund/ajo/internal/platform/config"
	"github.com/ajofund/ajo/internal/platform/logging"
	"github.com/ajofund/ajo/internal/storage"
	"github.com/ajofund/ajo/internal/storage/bbolt"
	"github.com/ajofund/ajo/internal/storage/sqlite"
)

// Storage driver names accepted by AJO_DB_DRIVER.
const (
	DriverBBolt  = "bbolt"
	DriverSQLite = "sqlite"
)

// Config holds engine command configuration.
type Config struct {
	DBDriver string `env:"AJO_DB_DRIVER" envDefault:"bbolt"`
	DBPath   string `env:"AJO_DB_PATH"   envDefault:"ajo.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "storage driver: bbolt or sqlite")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "database file path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// OpenStore opens the storage backend selected by the config.
func OpenStore(cfg Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case DriverBBolt:
		return bbolt.Open(cfg.DBPath)
	case DriverSQLite:
		return sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("storage driver %q is not supported", cfg.DBDriver)
	}
}

// Run starts the engine and blocks serving MCP until the context ends.
func Run(ctx context.Context, cfg Config) error {
	logging.Setup()

	grants, err := auth.LoadGrantConfigFromEnv(nil)
	if err != nil {
		return fmt.Errorf("load approval grant config: %w", err)
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("close store", "error", err)
		}
	}()

	svc := service.New(store)
	server := ajomcp.New(svc, grants)

	slog.Info("engine starting", "driver", cfg.DBDriver, "db_path", cfg.DBPath)
	return server.Serve(ctx)
}
