// Package config loads server configuration from environment
// variables and an optional config file.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved server configuration.
type Config struct {
	// ListenAddr the web server binds to.
	ListenAddr string `mapstructure:"listen_addr"`
	// APIBaseURL is the remote entity API, without trailing slash.
	APIBaseURL string `mapstructure:"api_base_url"`
	// CacheSize bounds the query cache.
	CacheSize int `mapstructure:"cache_size"`
}

// Load reads configuration with the usual precedence: environment
// variables (TASKDECK_*), then a taskdeck.yaml found in the working
// directory or /etc/taskdeck, then defaults. A missing config file is
// not an error.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("api_base_url", "http://localhost:8000")
	v.SetDefault("cache_size", 256)

	v.SetConfigName("taskdeck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/taskdeck")

	v.SetEnvPrefix("TASKDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.APIBaseURL = strings.TrimSuffix(cfg.APIBaseURL, "/")
	return cfg, nil
}
