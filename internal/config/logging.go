package config

import (
	"github.com/rshade/recongrid/internal/logging"
)

// ToLoggingConfig converts the logging section for the logging package.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		File:   lc.File,
	}
}

// GetLoggingConfig returns the Logging section of the global configuration.
// Overrides such as --debug are applied by the caller.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
