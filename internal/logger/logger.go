package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"chess-trainer-bot/internal/buildinfo"
	"chess-trainer-bot/internal/config"
)

var (
	initOnce sync.Once
	levelVar slog.LevelVar
	logFile  io.Closer

	// L is the base logger shared by components that do not carry a context.
	L *slog.Logger

	// TG logs Telegram transport events.
	TG *slog.Logger
	// Store logs dataset persistence events.
	Store *slog.Logger
	// SVC logs record service activity.
	SVC *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
)

// Component loggers stay usable before Init wires the real sink.
func init() {
	bind(slog.Default())
}

func bind(base *slog.Logger) {
	L = base
	TG = base.With("component", "tg")
	Store = base.With("component", "store")
	SVC = base.With("component", "svc")
	MIG = base.With("component", "db.migrate")
}

// Init configures the global structured logger. It may be called only once.
func Init(cfg *config.Config) error {
	var initErr error
	initOnce.Do(func() {
		levelVar.Set(parseLevel(cfg))

		out, closer, err := selectOutput(cfg)
		if err != nil {
			initErr = err
			return
		}
		logFile = closer

		opts := &slog.HandlerOptions{Level: &levelVar}
		var handler slog.Handler
		if selectFormat(cfg) == "text" {
			handler = slog.NewTextHandler(out, opts)
		} else {
			handler = slog.NewJSONHandler(out, opts)
		}

		logger := slog.New(newContextHandler(handler))
		bind(logger)
		slog.SetDefault(logger)

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
		)
	})
	return initErr
}

// Shutdown closes the log sink if one was opened.
func Shutdown() error {
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}

func parseLevel(cfg *config.Config) slog.Level {
	level := ""
	if cfg != nil {
		level = cfg.Logging.Level
	}
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

func selectFormat(cfg *config.Config) string {
	if cfg == nil {
		return "json"
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Logging.Format), "text") {
		return "text"
	}
	return "json"
}

func selectOutput(cfg *config.Config) (io.Writer, io.Closer, error) {
	output := ""
	if cfg != nil {
		output = strings.TrimSpace(cfg.Logging.Output)
	}
	switch output {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log output %s: %w", output, err)
		}
		return f, f, nil
	}
}

// Component returns a child of the base logger tagged with the component name.
func Component(name string) *slog.Logger {
	base := L
	if base == nil {
		base = slog.Default()
	}
	return base.With("component", name)
}

// Debug emits a debug event for the component enriched from context.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	logEvent(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info emits an info event for the component enriched from context.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	logEvent(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn emits a warning event for the component enriched from context.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	logEvent(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error emits an error event for the component enriched from context.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	logEvent(ctx, component, slog.LevelError, event, attrs...)
}

func logEvent(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	Component(component).LogAttrs(ctx, level, event, attrs...)
}
