package cli

import (
	"context"
	"fmt"

	"github.com/eagraf/habitat-store/internal/catalog"
	"github.com/eagraf/habitat-store/internal/config"
	"github.com/eagraf/habitat-store/internal/installer"
	"github.com/eagraf/habitat-store/internal/libstore"
	"github.com/eagraf/habitat-store/internal/logging"
	"github.com/eagraf/habitat-store/internal/orchestrator"
	"github.com/eagraf/habitat-store/internal/worker"
	"github.com/rs/zerolog/log"
)

// app is everything a command needs, built from config.
type app struct {
	config  *config.StoreConfig
	catalog *catalog.Catalog
	store   *libstore.SQLiteStore
	service *orchestrator.Service
}

func loadConfig() (*config.StoreConfig, error) {
	if configPath != "" {
		return config.NewStoreConfigFromFile(configPath)
	}
	return config.NewStoreConfig()
}

func launcherConfig(cfg *config.StoreConfig) worker.LauncherConfig {
	return worker.LauncherConfig{
		WorkerPath:     cfg.WorkerPath(),
		IPCDir:         cfg.IPCDir(),
		InstallRoot:    cfg.InstallRoot(),
		ConnectTimeout: cfg.ConnectTimeout(),
		Elevation:      cfg.ElevationCommand(),
	}
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	logging.NewLogger(cfg.LogLevel())

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	store, err := libstore.OpenSQLiteStore(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	inst, err := installer.NewPlatformInstaller(launcherConfig(cfg))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		config:  cfg,
		catalog: cat,
		store:   store,
		service: orchestrator.NewService(inst, store),
	}, nil
}

func (a *app) Close() {
	if err := a.service.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("Error shutting down installs")
	}
	if err := a.store.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing library")
	}
}
