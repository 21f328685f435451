package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/connectors/filesystem"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/core/services"
	"github.com/custodia-labs/docsync/internal/normalisers/snapshot"
)

// setupServices swaps in services backed by an in-memory store and returns
// a cleanup that restores the previous state.
func setupServices(t *testing.T) (*memory.RecordStore, func()) {
	t.Helper()

	oldSettings, oldSync, oldHistory := settingsService, versionSync, historyService
	oldSource, oldNormaliser, oldClose, oldWiring := batchSource, normaliser, closePipeline, wiring

	store := memory.NewRecordStore()
	SetWiring(Wiring{})
	SetServices(services.NewSettingsService(memory.NewConfigStore()), &Pipeline{
		VersionSync: services.NewVersionSyncService(store, services.SyncOptions{}),
		History:     services.NewHistoryService(store),
		Source:      filesystem.New(),
		Normaliser:  snapshot.New(snapshot.WithFillMissingHash(true)),
	})

	return store, func() {
		settingsService, versionSync, historyService = oldSettings, oldSync, oldHistory
		batchSource, normaliser, closePipeline, wiring = oldSource, oldNormaliser, oldClose, oldWiring
		syncJSON, historyDiff, historyJSON, storeDriver = false, "", false, ""
	}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "docsync", rootCmd.Use)
}

func TestRootCmd_HasCommands(t *testing.T) {
	commands := rootCmd.Commands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "sync")
	assert.Contains(t, names, "watch")
	assert.Contains(t, names, "history")
	assert.Contains(t, names, "settings")
	assert.Contains(t, names, "version")
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	for _, name := range []string{"verbose", "config-dir", "store"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRequirePipeline_NotConfigured(t *testing.T) {
	_, cleanup := setupServices(t)
	defer cleanup()
	versionSync = nil

	err := requirePipeline(context.Background())
	assert.EqualError(t, err, "sync service not configured")
}

func TestRequirePipeline_UsesWiringAndStoreOverride(t *testing.T) {
	_, cleanup := setupServices(t)
	defer cleanup()
	versionSync = nil

	var got domain.Settings
	closed := false
	SetWiring(Wiring{
		Pipeline: func(_ context.Context, settings domain.Settings) (*Pipeline, error) {
			got = settings
			store := memory.NewRecordStore()
			return &Pipeline{
				VersionSync: services.NewVersionSyncService(store, services.SyncOptions{}),
				History:     services.NewHistoryService(store),
				Source:      filesystem.New(),
				Close: func() error {
					closed = true
					return nil
				},
			}, nil
		},
	})

	out, err := run(t, "sync", "--store", "memory", writeBatch(t, `[{"url":"https://a","content_hash":"h1"}]`))
	require.NoError(t, err, out)

	assert.Equal(t, domain.StoreMemory, got.Driver)
	assert.True(t, closed, "pipeline closed after the command")
}

func TestRequirePipeline_InvalidStoreOverride(t *testing.T) {
	_, cleanup := setupServices(t)
	defer cleanup()
	versionSync = nil
	SetWiring(Wiring{
		Pipeline: func(context.Context, domain.Settings) (*Pipeline, error) {
			return nil, errors.New("should not be called")
		},
	})
	storeDriver = "mysql"

	err := requirePipeline(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRequirePipeline_WiringError(t *testing.T) {
	_, cleanup := setupServices(t)
	defer cleanup()
	versionSync = nil
	SetWiring(Wiring{
		Pipeline: func(context.Context, domain.Settings) (*Pipeline, error) {
			return nil, domain.ErrStoreUnavailable
		},
	})

	err := requirePipeline(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestSetup_BuildsSettingsFromWiring(t *testing.T) {
	_, cleanup := setupServices(t)
	defer cleanup()
	settingsService = nil

	var gotDir string
	SetWiring(Wiring{
		Settings: func(dir string) (driving.SettingsService, error) {
			gotDir = dir
			return services.NewSettingsService(memory.NewConfigStore()), nil
		},
	})
	defer func() { configDir = "" }()

	out, err := run(t, "settings", "--config-dir", "/tmp/docsync-conf")
	require.NoError(t, err, out)
	assert.Equal(t, "/tmp/docsync-conf", gotDir)
	assert.Contains(t, out, "Current Settings")
}
