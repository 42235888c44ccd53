// Package logger provides the zerolog-backed implementation of the core
// logger interface.
package logger

import (
	"strings"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/skyops/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// SetLevel sets the minimum level for every logger. Unknown names fall back
// to info and return false.
func SetLevel(level string) bool {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return false
	}
	zerolog.SetGlobalLevel(lvl)
	return true
}
