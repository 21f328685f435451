// Package cli provides the docsync command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	verbose     bool
	configDir   string
	storeDriver string
)

// Services used by the commands. Set by SetServices or built on demand through wiring.
var (
	versionSync     driving.VersionSync
	historyService  driving.VersionHistory
	settingsService driving.SettingsService
	batchSource     driven.BatchSource
	normaliser      driven.SnapshotNormaliser
	closePipeline   func() error
)

// wiring builds services once flags are parsed.
var wiring Wiring

// Pipeline holds the store-backed services. Close releases the store.
type Pipeline struct {
	VersionSync driving.VersionSync
	History     driving.VersionHistory
	Source      driven.BatchSource
	Normaliser  driven.SnapshotNormaliser
	Close       func() error
}

// Wiring builds services from the parsed global flags.
type Wiring struct {
	// Settings opens the settings service for the given config directory
	// (empty means the default).
	Settings func(configDir string) (driving.SettingsService, error)

	// Pipeline opens the record store selected by settings and builds the
	// services on top of it.
	Pipeline func(ctx context.Context, settings domain.Settings) (*Pipeline, error)

	// SchemaVersion is the store schema this build migrates to. Zero hides it
	// from the version output.
	SchemaVersion int
}

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Version history for crawled legal documents",
	Long: `docsync keeps an append-only version history of crawled legal documents.

Every crawled snapshot is compared to the latest stored version of its URL.
A new version is recorded when the content hash changed or the source reports
a newer update date; otherwise the snapshot is skipped.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docsync)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "record store: sqlite, postgres or memory")
}

// SetWiring registers the factories used to build services on demand.
func SetWiring(w Wiring) {
	wiring = w
}

// SetServices injects ready-made services, bypassing the wiring.
func SetServices(settings driving.SettingsService, p *Pipeline) {
	settingsService = settings
	if p == nil {
		return
	}
	versionSync = p.VersionSync
	historyService = p.History
	batchSource = p.Source
	normaliser = p.Normaliser
	closePipeline = p.Close
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if settingsService != nil || wiring.Settings == nil {
		return nil
	}
	svc, err := wiring.Settings(configDir)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settingsService = svc
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closePipeline == nil {
		return nil
	}
	err := closePipeline()
	closePipeline = nil
	return err
}

// requirePipeline makes sure the store-backed services are available.
func requirePipeline(ctx context.Context) error {
	if versionSync != nil {
		return nil
	}
	if wiring.Pipeline == nil {
		return errors.New("sync service not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if storeDriver != "" {
		settings.Driver = domain.StoreDriver(storeDriver)
		if err := settings.Validate(); err != nil {
			return err
		}
	}

	p, err := wiring.Pipeline(ctx, *settings)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", settings.Driver, err)
	}
	SetServices(settingsService, p)
	return nil
}
