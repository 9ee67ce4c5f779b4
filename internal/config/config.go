// Package config loads client configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config is the environment-backed configuration. ServerURL only seeds the
// session store's default; once a server_url is persisted, the stored value
// wins.
type Config struct {
	AppName     string        `env:"MONITOR_APP_NAME" envDefault:"Baby Monitor"`
	ServerURL   string        `env:"MONITOR_SERVER_URL" envDefault:"http://10.0.2.2:8000"`
	DataFolder  string        `env:"MONITOR_DATA_FOLDER" envDefault:"./data"`
	HTTPTimeout time.Duration `env:"MONITOR_HTTP_TIMEOUT" envDefault:"15s"`
}

// New parses the configuration from environment variables.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "[config.New] parse env")
	}
	return cfg, nil
}
