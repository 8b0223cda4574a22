package logger

import (
	"log/slog"
)

// Setup installs the custom handler as the default logger.
func Setup(level slog.Level, color bool) {
	slog.SetDefault(slog.New(NewHandler(Options{Level: level, Color: color})))
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
