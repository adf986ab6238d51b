package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log — базовый логгер сервиса и его sugared-обёртка.
type Log struct {
	Base   *zap.Logger
	Sugar  *zap.SugaredLogger
	Level  zap.AtomicLevel
	Closer func()
}

// Init собирает zap: JSON в prod, консольный вывод в остальных окружениях.
// Неизвестный уровень молча превращается в info.
func Init(level, env string) (*Log, error) {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg := zap.NewDevelopmentConfig()
	prod := strings.EqualFold(env, "prod")
	if prod {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": "portal", "env": strings.ToLower(env)}

	base, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}
	return newLog(base, lvl), nil
}

// Nop — логгер-заглушка для тестов.
func Nop() *Log {
	return newLog(zap.NewNop(), zap.NewAtomicLevelAt(zap.InfoLevel))
}

// For — логгер подсистемы (http, bot, jobs...) с полем component.
func (l *Log) For(component string) *zap.SugaredLogger {
	return l.Base.Named(component).Sugar().With("component", component)
}

func newLog(base *zap.Logger, lvl zap.AtomicLevel) *Log {
	return &Log{
		Base:   base,
		Sugar:  base.Sugar(),
		Level:  lvl,
		Closer: func() { _ = base.Sync() },
	}
}
