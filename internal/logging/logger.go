package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"lg/diet-mentor-go-api/internal/config"
)

// Redacted replaces the value of credential attributes.
const Redacted = "[redacted]"

// Attribute keys that carry login secrets. Matched case-insensitively.
var secretKeys = map[string]bool{
	"password":      true,
	"auth_token":    true,
	"token":         true,
	"authorization": true,
}

// New returns the service logger, writing to stdout.
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg)
}

// NewWithWriter builds the logger on w. Format "json" selects the JSON
// handler, anything else the text handler. Passwords and bearer tokens are
// never written, whatever the call site passes.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		AddSource:   cfg.IncludeCaller,
		ReplaceAttr: redact,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Component tags every entry of l with the subsystem that wrote it
// (http, coach, store, scheduler).
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With("component", name)
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Redacted)
	}
	return a
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
