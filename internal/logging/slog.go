package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Options configures SlogManager.Setup.
type Options struct {
	// Console receives human readable output; nil disables it.
	Console io.Writer
	// File receives the same output as Console; nil disables it.
	File  io.Writer
	Level string
	// Provider enables the OTel bridge when non-nil.
	Provider *sdklog.LoggerProvider
	// Context adds live attributes to every record when non-nil.
	Context ContextProvider
	// Name is the OTel instrumentation scope.
	Name string
}

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// ParseLevel converts a string log level to slog.Level. Unknown values are
// treated as info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system.
func (m *SlogManager) Setup(opts Options) {
	lvl := ParseLevel(opts.Level)
	m.logProvider = opts.Provider

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, handlerOpts))
	}
	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, handlerOpts))
	}
	if opts.Provider != nil {
		name := opts.Name
		if name == "" {
			name = "missionmap"
		}
		handlers = append(handlers, otelslog.NewHandler(name, otelslog.WithLoggerProvider(opts.Provider)))
	}

	var handler slog.Handler = NewMultiHandler(handlers...)
	if opts.Context != nil {
		handler = NewContextHandler(handler, opts.Context, slog.LevelInfo)
	}

	m.logger = slog.New(handler)
	m.logger.Info("Logging initialized", "level", lvl.String())
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
