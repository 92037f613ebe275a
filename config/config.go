// Package config loads playground service configuration via Viper, with
// precedence: environment variables (PLAYGROUND_*) > config file > defaults.
package config

// Config is the top-level service configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Editor EditorConfig `mapstructure:"editor"`
	Vocab  VocabConfig  `mapstructure:"vocab"`
}

// ServerConfig controls the HTTP/WebSocket surface.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// MaxDocuments bounds the per-client LSP document cache.
	MaxDocuments int `mapstructure:"max_documents"`
	// EditRatePerSecond and EditBurst bound how fast a single client may
	// push edit messages before the server starts dropping them.
	EditRatePerSecond float64 `mapstructure:"edit_rate_per_second"`
	EditBurst         int     `mapstructure:"edit_burst"`
}

// EditorConfig controls the debounced sync between the editor buffer and
// the shared store.
type EditorConfig struct {
	// DebounceMs is the quiet interval in milliseconds before an edit
	// burst is published to the shared store.
	DebounceMs int `mapstructure:"debounce_ms"`
}

// VocabConfig controls the tag vocabulary table.
type VocabConfig struct {
	// Path to a TOML vocabulary file. Empty means the built-in table.
	Path string `mapstructure:"path"`
	// Watch enables hot reload of the vocabulary file.
	Watch bool `mapstructure:"watch"`
}
