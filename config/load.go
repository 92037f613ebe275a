package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/markuplab/playground/errors"
	"github.com/spf13/viper"
)

const configFileName = "playground.toml"

var (
	globalConfig *Config
	globalMu     sync.Mutex
)

// Load reads the service configuration. The result is cached; call Reset
// to force a reload (tests).
func Load() (*Config, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	v := newViper()

	// A missing config file is fine — defaults and env vars carry it.
	if path := findConfigFile(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path, bypassing
// the cache and environment discovery.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", path)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
}

// newViper initializes Viper with env binding and defaults.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetEnvPrefix("PLAYGROUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// findConfigFile looks for playground.toml in the working directory, then
// in the user config directory.
func findConfigFile() string {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}

	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "playground", configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
