package config

import "github.com/spf13/viper"

// Default ports: the dev server and a fallback when it is taken.
const (
	DefaultPort  = 8642
	FallbackPort = 8643
)

// SetDefaults applies default values to a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
	})
	v.SetDefault("server.max_documents", 100)
	v.SetDefault("server.edit_rate_per_second", 50.0)
	v.SetDefault("server.edit_burst", 100)

	v.SetDefault("editor.debounce_ms", 750)

	v.SetDefault("vocab.path", "")
	v.SetDefault("vocab.watch", false)
}
