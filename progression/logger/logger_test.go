package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerFormatsTypeAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(Options{Level: slog.LevelDebug, Writer: &buf}))

	log.With(slog.String("user_id", "u1")).Info("Level up", slog.String("type", "level"), slog.Int("level", 5))

	out := buf.String()
	assert.Contains(t, out, "[INFO] [LVL] Level up")
	assert.Contains(t, out, "user_id=u1")
	assert.Contains(t, out, "level=5")
	assert.NotContains(t, out, "type=")
}

func TestHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(Options{Level: slog.LevelWarn, Writer: &buf}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN] [SYS] shown")
}

func TestHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(Options{Writer: &buf})).WithGroup("quest")

	log.Info("tracked", slog.Int64("amount", 3))

	assert.Contains(t, buf.String(), "quest.amount=3")
}
