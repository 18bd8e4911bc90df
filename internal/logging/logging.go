// Package logging собирает zap-логгер: stdout всегда, файл с ротацией по желанию.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string // debug|info|warn|error
	File  string // пусто: только stdout

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func (o Options) withDefaults() Options {
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = 50
	}
	if o.MaxBackups <= 0 {
		o.MaxBackups = 5
	}
	if o.MaxAgeDays <= 0 {
		o.MaxAgeDays = 28
	}
	return o
}

func parseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, fmt.Errorf("logging: unknown level %q", s)
	}
	return lvl, nil
}

// New: production JSON-логгер; при File ещё и файл через lumberjack.
func New(o Options) (*zap.Logger, error) {
	o = o.withDefaults()
	lvl, err := parseLevel(o.Level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if o.File == "" {
		return config.Build()
	}

	enc := zapcore.NewJSONEncoder(config.EncoderConfig)
	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
		Compress:   true,
	})
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), config.Level),
		zapcore.NewCore(enc, file, config.Level),
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Since: поле длительности для логов доступа.
func Since(start time.Time) zap.Field {
	return zap.Duration("latency", time.Since(start))
}
