package config

import (
	"os"
	"strings"
)

// Environment variables read by LoggingFromEnv.
const (
	EnvLogLevel = "CLOCKWIDGET_LOG_LEVEL"
	EnvLogFile  = "CLOCKWIDGET_LOG_FILE"
)

// Logging holds the logging options.
type Logging struct {
	Level string // debug, info, warn or error
	File  string // optional rotating log file
}

// LoggingFromEnv reads logging options from the environment. An unset level
// means info.
func LoggingFromEnv() Logging {
	level := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel)))
	if level == "" {
		level = "info"
	}
	return Logging{
		Level: level,
		File:  strings.TrimSpace(os.Getenv(EnvLogFile)),
	}
}
