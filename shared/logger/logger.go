package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config содержит настройки логгера.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json или console
	OutputPath string // файл лога; пусто - stdout
}

// New собирает zap.Logger по конфигурации.
// Неверный уровень не ломает запуск: пишем предупреждение в stderr и используем info.
func New(cfg Config) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	zapConfig := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          normalizeEncoding(cfg.Encoding),
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{outputOrStdout(cfg.OutputPath)},
		ErrorOutputPaths:  []string{"stderr"},
	}

	log, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

func parseLevel(raw string) zap.AtomicLevel {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return level
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", raw, err)
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

func normalizeEncoding(raw string) string {
	if strings.EqualFold(raw, "console") {
		return "console"
	}
	return "json"
}

func outputOrStdout(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
