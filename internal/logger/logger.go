package logger

import (
	"dublinbikes-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "dublinbikes-api"

// Version is stamped at build time: -ldflags "-X dublinbikes-api/internal/logger.Version=..."
var Version = "dev"

type Logger struct {
	*zap.Logger
}

// New creates a zap logger configured by environment.
func New(cfg *config.Config) *Logger {
	l, err := zapConfig(cfg).Build()
	if err != nil {
		panic(err)
	}

	return &Logger{l.Named("dublinbikes")}
}

// zapConfig picks the encoder for the environment and tags every entry
// with the service identity.
func zapConfig(cfg *config.Config) zap.Config {
	var zapCfg zap.Config

	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.InitialFields = map[string]interface{}{
		"service": serviceName,
		"version": Version,
		"env":     cfg.Environment,
	}
	return zapCfg
}

// Nop returns a logger that discards everything, used by tests.
func Nop() *Logger {
	return &Logger{zap.NewNop()}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() {
	_ = l.Logger.Sync() // ignore sync errors (often harmless in dev)
}
