package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger собирает zap логгер. В production пишет JSON, иначе цветную консоль.
// level переопределяет уровень окружения; неизвестное значение игнорируется.
func NewLogger(env, level string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.OutputPaths = []string{"stdout"}

	if level != "" {
		if lvl, err := zapcore.ParseLevel(level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("build logger: " + err.Error())
	}
	return logger.With(zap.String("service", "coach_bot"), zap.String("env", env))
}
