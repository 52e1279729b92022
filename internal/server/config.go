package server

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads the unideck configuration. When path is empty, well-known
// locations are searched and a missing file falls back to defaults plus
// environment variables (UNIDECK_* with dots as underscores).
func LoadConfig(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8742")
	v.SetDefault("providers.attribution.enabled", true)
	v.SetDefault("providers.panel.enabled", true)
	v.SetDefault("providers.panel.refresh_min_interval", "5s")

	v.SetEnvPrefix("UNIDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("unideck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/unideck")
	v.AddConfigPath("/etc/unideck")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No file is fine; defaults and environment cover a local setup.
	}
	return v, nil
}
