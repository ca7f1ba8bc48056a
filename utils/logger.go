package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

var logLevels = map[string]pterm.LogLevel{
	"trace":    pterm.LogLevelTrace,
	"debug":    pterm.LogLevelDebug,
	"info":     pterm.LogLevelInfo,
	"warn":     pterm.LogLevelWarn,
	"warning":  pterm.LogLevelWarn,
	"error":    pterm.LogLevelError,
	"disabled": pterm.LogLevelDisabled,
	"off":      pterm.LogLevelDisabled,
}

// ParseLogLevel maps a level name such as "debug" to its pterm level.
func ParseLogLevel(level string) (pterm.LogLevel, error) {
	parsed, ok := logLevels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return pterm.LogLevelInfo, fmt.Errorf("unknown log level %q", level)
	}
	return parsed, nil
}

// NewLogger returns a structured logger writing to w at the given level.
func NewLogger(w io.Writer, level string) (*pterm.Logger, error) {
	parsed, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return pterm.DefaultLogger.
		WithWriter(w).
		WithLevel(parsed).
		WithTime(false), nil
}
