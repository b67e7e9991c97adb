// Package log configures the zap loggers used by the flyby programs.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavor.
type Config struct {
	// Development enables human readable console output and stack traces on warnings.
	Development bool
	// Debug lowers the level to debug, which includes choreography stage transitions.
	Debug bool
	// File, if set, receives log output instead of stderr.
	File string
}

// New builds a zap logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	var config zap.Config
	if cfg.Development {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	if cfg.Debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.File != "" {
		config.OutputPaths = []string{cfg.File}
		config.ErrorOutputPaths = []string{cfg.File}
	}
	return config.Build()
}
