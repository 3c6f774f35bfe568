package config

import (
	"path/filepath"

	"github.com/rshade/recordlist/internal/logging"
)

const browseLogFile = "recordlist.log"

// ToLoggingConfig converts config.LoggingConfig to logging.Config for use with
// the internal/logging package.
//
// The conversion applies these rules:
//   - Level, Format are copied directly
//   - If File is set, Output becomes "file" and File is passed through
//   - If File is empty, Output defaults to "stderr"
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// ForTerminalUI returns the logging settings for the interactive browser:
// always a file, JSON encoded, defaulting to logs/recordlist.log in the
// config directory.
func (lc *LoggingConfig) ForTerminalUI() logging.Config {
	cfg := lc.ToLoggingConfig()
	cfg.Output = logging.OutputFile
	cfg.Format = logging.FormatJSON
	if cfg.File == "" {
		if dir, err := GetLogDir(); err == nil {
			cfg.File = filepath.Join(dir, browseLogFile)
		} else {
			cfg.File = filepath.Join(".", browseLogFile)
		}
	}
	return cfg
}

// GetLoggingConfig returns the Logging section of the global configuration.
// Any overrides (for example a --debug flag) are expected to be applied by
// the caller after retrieving this value.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
