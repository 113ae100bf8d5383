package config

import (
	"github.com/rshade/recongrid/internal/provider/cache"
)

// Environment variables that override the file.
const (
	EnvHome      = "RECONGRID_HOME"
	EnvLogLevel  = "RECONGRID_LOG_LEVEL"
	EnvLogFormat = "RECONGRID_LOG_FORMAT"
	EnvProvider  = "RECONGRID_PROVIDER"
	EnvDSN       = "RECONGRID_DSN"
	EnvAPIURL    = "RECONGRID_API_URL"
	EnvAPIToken  = "RECONGRID_API_TOKEN"
	EnvCacheTTL  = "RECONGRID_CACHE_TTL"
)

// ApplyEnvOverrides applies environment overrides read through lookupEnv.
// An invalid cache TTL is ignored.
func (c *Config) ApplyEnvOverrides(lookupEnv func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	set(EnvLogLevel, &c.Logging.Level)
	set(EnvLogFormat, &c.Logging.Format)
	set(EnvProvider, &c.Provider.Kind)
	set(EnvDSN, &c.Provider.DSN)
	set(EnvAPIURL, &c.Provider.BaseURL)
	set(EnvAPIToken, &c.Provider.Token)

	if v, ok := lookupEnv(EnvCacheTTL); ok {
		if ttl, err := cache.ParseTTL(v); err == nil {
			c.Cache.TTLSeconds = ttl
		}
	}
}
