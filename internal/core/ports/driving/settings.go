package driving

import "github.com/custodia-labs/docsync/internal/core/domain"

// SettingsService resolves and updates application settings.
type SettingsService interface {
	// Get returns the effective settings (file values overlaid by environment).
	Get() (*domain.Settings, error)

	// Set validates and persists a single setting.
	Set(key, value string) error

	// Keys returns the settable keys.
	Keys() []string
}
