package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeSystem  LogType = "SYS"
	TypeDB      LogType = "DB"
	TypeHTTP    LogType = "HTTP"
	TypeLevel   LogType = "LVL"
	TypeRebirth LogType = "RBT"
	TypeQuest   LogType = "QST"
	TypeError   LogType = "ERR"
)

var logTypes = map[string]LogType{
	"db":      TypeDB,
	"http":    TypeHTTP,
	"level":   TypeLevel,
	"rebirth": TypeRebirth,
	"quest":   TypeQuest,
	"error":   TypeError,
}

type Options struct {
	Level  slog.Leveler
	Writer io.Writer
	Color  bool
}

type CustomHandler struct {
	opts   Options
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

func NewHandler(opts Options) *CustomHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &CustomHandler{opts: opts, mu: &sync.Mutex{}}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CustomHandler{
		opts:   h.opts,
		mu:     h.mu,
		attrs:  append(append([]slog.Attr(nil), h.attrs...), attrs...),
		groups: h.groups,
	}
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	return &CustomHandler{
		opts:   h.opts,
		mu:     h.mu,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	logType := TypeSystem
	var sb strings.Builder
	appendAttr := func(a slog.Attr) {
		if a.Key == "type" {
			if t, ok := logTypes[a.Value.String()]; ok {
				logType = t
			}
			return
		}
		key := a.Key
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		fmt.Fprintf(&sb, " %s=%v", key, a.Value.Resolve())
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(a)
		return true
	})

	timestamp := r.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	line := fmt.Sprintf("[GoHYE] [%s] [%s] [%s] %s%s",
		timestamp.Format("15:04:05"), levelText, logType, r.Message, sb.String())
	if h.opts.Color {
		line = fmt.Sprintf("%s[GoHYE] [%s] [%s%s%s] [%s] %s%s%s",
			colorWhite, timestamp.Format("15:04:05"), levelColor, levelText, colorWhite,
			logType, r.Message, sb.String(), colorReset)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.opts.Writer, line)
	return err
}
