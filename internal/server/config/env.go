package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays configuration from environment variables onto cfg.
// Unset variables leave the existing values untouched.
func parseEnv(cfg *Config) error {
	return env.Parse(cfg)
}
