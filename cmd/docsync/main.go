package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/docsync/internal/connectors/filesystem"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/core/services"
	"github.com/custodia-labs/docsync/internal/logger"
	"github.com/custodia-labs/docsync/internal/normalisers/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loadEnvFile(".env")

	cli.SetWiring(cli.Wiring{
		Settings:      openSettings,
		Pipeline:      openPipeline,
		SchemaVersion: migrations.Latest(),
	})

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadEnvFile adds the variables of path to the process environment.
// Variables already set are kept; a missing file is not an error.
func loadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", path, err)
	}
}

func openSettings(configDir string) (driving.SettingsService, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, err
	}
	loadEnvFile(filepath.Join(filepath.Dir(configStore.Path()), ".env"))
	return services.NewSettingsService(configStore), nil
}

func openPipeline(ctx context.Context, settings domain.Settings) (*cli.Pipeline, error) {
	store, closeStore, err := openStore(ctx, settings)
	if err != nil {
		return nil, err
	}

	return &cli.Pipeline{
		VersionSync: services.NewVersionSyncService(store, services.SyncOptions{
			ContinueOnError: settings.Sync.ContinueOnError,
			TrackSessions:   settings.Sync.TrackSessions,
		}),
		History:    services.NewHistoryService(store),
		Source:     filesystem.New(),
		Normaliser: snapshot.New(snapshot.WithFillMissingHash(settings.Sync.FillMissingHash)),
		Close:      closeStore,
	}, nil
}

func openStore(ctx context.Context, settings domain.Settings) (driven.RecordStore, func() error, error) {
	switch settings.Driver {
	case domain.StorePostgres:
		store, err := postgres.Connect(ctx, settings.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case domain.StoreMemory:
		logger.Warn("Using in-memory store: versions are discarded on exit")
		return memory.NewRecordStore(), func() error { return nil }, nil

	default:
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Using SQLite store at %s", store.Path())
		return store, store.Close, nil
	}
}
