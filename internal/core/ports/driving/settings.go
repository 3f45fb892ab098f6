package driving

import "github.com/custodia-labs/sercha-voice/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get assembles the current settings from defaults, the config file and
	// the environment.
	Get() (*domain.AppSettings, error)

	// Validate loads the settings and fails with domain.ErrConfiguration
	// when they cannot run the assistant.
	Validate() error

	// Set stores a single configuration value by dot-notation key.
	Set(key, value string) error

	// Values returns the raw stored configuration, keyed by dot notation.
	Values() map[string]any

	// Keys returns every settable key in sorted order.
	Keys() []string

	// ConfigPath returns the configuration file location.
	ConfigPath() string
}
