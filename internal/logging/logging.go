// Package logging builds the zap logger used by every command.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger at level writing to stderr. development switches to
// zap's human-readable console config.
func New(level string, development bool) (*zap.Logger, error) {
	return build(level, development, nil)
}

// NewFile is New writing to path instead of stderr. The viewer owns the
// terminal, so it logs here.
func NewFile(level, path string, development bool) (*zap.Logger, error) {
	return build(level, development, []string{path})
}

func build(level string, development bool, outputs []string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	config := zap.NewProductionConfig()
	if development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	if outputs != nil {
		config.OutputPaths = outputs
		config.ErrorOutputPaths = outputs
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
