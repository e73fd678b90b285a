package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ziadkadry99/gazeoverlay/internal/broadcast"
	"github.com/ziadkadry99/gazeoverlay/internal/config"
	"github.com/ziadkadry99/gazeoverlay/internal/db"
	"github.com/ziadkadry99/gazeoverlay/internal/kv"
	"github.com/ziadkadry99/gazeoverlay/internal/logging"
	"github.com/ziadkadry99/gazeoverlay/internal/settings"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `gazeoverlay init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the slog logger for cfg; --verbose forces debug level.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: string(cfg.Log.Format),
		Output: w,
	})
}

func settingsKeys(cfg *config.Config) settings.Keys {
	return settings.Keys{
		BackendURL:  cfg.Storage.Keys.BackendURL,
		Calibration: cfg.Storage.Keys.Calibration,
		Enabled:     cfg.Storage.Keys.Enabled,
	}
}

// storage bundles the opened settings database and the layers over it.
type storage struct {
	db       *db.DB
	kv       *kv.SQLStore
	settings *settings.Store
}

func (s *storage) Close() error { return s.db.Close() }

// openStorage opens the settings database. bus may be nil for one-shot
// commands; running overlays pick their writes up through the watcher.
func openStorage(cfg *config.Config, bus *broadcast.Bus, logger *slog.Logger) (*storage, error) {
	database, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening settings database: %w", err)
	}
	store := kv.NewSQLStore(database)
	return &storage{
		db: database,
		kv: store,
		settings: settings.NewStore(store, settings.Options{
			Keys:    settingsKeys(cfg),
			Bus:     bus,
			Channel: cfg.Broadcast.Channel,
			Logger:  logger,
		}),
	}, nil
}
