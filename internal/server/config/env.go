package config

import (
	"github.com/caarlos0/env/v11"
)

// parseEnv overlays Config fields from environment variables. Only variables
// that are actually set override the current values, so defaults and JSON
// values survive for the rest.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
