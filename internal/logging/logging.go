// Package logging builds the zap.Logger every cmd/schedule subcommand
// threads through to internal/satsolver, grounded on the
// level-string-to-zap.Config pattern noah-isme-sma-adp-api's
// pkg/logger uses for its own HTTP server.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console-encoded zap.Logger at the given level (any value
// zapcore.Level.UnmarshalText accepts — "debug", "info", "warn", "error";
// an empty or unrecognized level falls back to info). A command-line
// tool has no HTTP requests to correlate, so this stays with cobra's own
// plain-text console rather than the JSON encoding a server would want.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	return cfg.Build()
}
