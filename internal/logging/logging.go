package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. Development mode gets colored console output,
// anything else gets production JSON.
func New(service string, development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.InitialFields = map[string]interface{}{
		"service": service,
	}
	return cfg.Build()
}

// NewTest returns a logger suitable for tests.
func NewTest() *zap.Logger {
	l, _ := zap.NewDevelopment()
	return l
}
