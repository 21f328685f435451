package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStoreDriver     = "store.driver"
	keyStoreDataDir    = "store.data_dir"
	keyPGHost          = "postgres.host"
	keyPGPort          = "postgres.port"
	keyPGUser          = "postgres.user"
	keyPGPassword      = "postgres.password"
	keyPGDBName        = "postgres.dbname"
	keyPGSSLMode       = "postgres.sslmode"
	keyContinueOnError = "sync.continue_on_error"
	keyTrackSessions   = "sync.track_sessions"
	keyFillMissingHash = "sync.fill_missing_hash"
)

// KeyPostgresPassword is the settings key of the PostgreSQL password.
const KeyPostgresPassword = keyPGPassword

// Environment variables that override file settings.
const (
	envStoreDriver = "DOCSYNC_STORE_DRIVER"
	envDataDir     = "DOCSYNC_DATA_DIR"
	envPGHost      = "POSTGRES_HOST"
	envPGPort      = "POSTGRES_PORT"
	envPGUser      = "POSTGRES_USER"
	envPGPassword  = "POSTGRES_PASSWORD"
	envPGDB        = "POSTGRES_DB"
	envPGSSLMode   = "POSTGRES_SSLMODE"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
	kindDriver
)

var settingKinds = map[string]keyKind{
	keyStoreDriver:     kindDriver,
	keyStoreDataDir:    kindString,
	keyPGHost:          kindString,
	keyPGPort:          kindInt,
	keyPGUser:          kindString,
	keyPGPassword:      kindString,
	keyPGDBName:        kindString,
	keyPGSSLMode:       kindString,
	keyContinueOnError: kindBool,
	keyTrackSessions:   kindBool,
	keyFillMissingHash: kindBool,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading overrides from the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get returns the effective settings: defaults, then the config file, then the environment.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Driver:  domain.StoreDriver(s.getString(keyStoreDriver, envStoreDriver, defaults.Driver.String())),
		DataDir: s.getString(keyStoreDataDir, envDataDir, defaults.DataDir),
		Postgres: domain.PostgresSettings{
			Host:     s.getString(keyPGHost, envPGHost, defaults.Postgres.Host),
			User:     s.getString(keyPGUser, envPGUser, defaults.Postgres.User),
			Password: s.getString(keyPGPassword, envPGPassword, defaults.Postgres.Password),
			DBName:   s.getString(keyPGDBName, envPGDB, defaults.Postgres.DBName),
			SSLMode:  s.getString(keyPGSSLMode, envPGSSLMode, defaults.Postgres.SSLMode),
		},
		Sync: domain.SyncSettings{
			ContinueOnError: s.getBool(keyContinueOnError, defaults.Sync.ContinueOnError),
			TrackSessions:   s.getBool(keyTrackSessions, defaults.Sync.TrackSessions),
			FillMissingHash: s.getBool(keyFillMissingHash, defaults.Sync.FillMissingHash),
		},
	}

	port, err := s.getInt(keyPGPort, envPGPort, defaults.Postgres.Port)
	if err != nil {
		return nil, err
	}
	settings.Postgres.Port = port

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set validates and persists a single setting.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any
	switch kind {
	case kindString:
		stored = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	case kindDriver:
		driver := domain.StoreDriver(value)
		if !driver.IsValid() {
			return fmt.Errorf("%w: store driver %q", domain.ErrUnsupportedType, value)
		}
		stored = driver.String()
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SettingsService) getString(key, env, defaultVal string) string {
	if v, ok := s.lookupEnv(env); ok && v != "" {
		return v
	}
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key, env string, defaultVal int) (int, error) {
	if v, ok := s.lookupEnv(env); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, env)
		}
		return n, nil
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal, nil
	}
	return s.configStore.GetInt(key), nil
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
