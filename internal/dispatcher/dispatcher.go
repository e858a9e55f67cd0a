package dispatcher

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Event is one decoded message from a parse job, tagged with the mission it
// belongs to.
type Event struct {
	MissionID string
	Type      string
	Payload   json.RawMessage
	Timestamp time.Time
}

// HandlerFunc processes an event.
type HandlerFunc func(context.Context, Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	logged bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes events to registered handlers by message type.
// Types without a handler are counted and ignored.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   Logger

	// OTEL metrics
	processed metric.Int64Counter
	ignored   metric.Int64Counter
	failed    metric.Int64Counter
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}

	if err := d.initMetrics(); err != nil {
		return nil, err
	}
	return d, nil
}

// Register adds a handler for the given message type with optional configuration.
// Registering the same type twice replaces the earlier handler.
func (d *Dispatcher) Register(msgType string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h
	if cfg.logged {
		handler = d.withLogging(msgType, handler)
	}

	d.mu.Lock()
	d.handlers[msgType] = handler
	d.mu.Unlock()
}

// Dispatch routes an event to its registered handler. handled is false when
// no handler exists for the event type; that is not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) (handled bool, err error) {
	d.mu.RLock()
	h, ok := d.handlers[e.Type]
	d.mu.RUnlock()

	typeAttr := eventType(e.Type)
	if !ok {
		d.ignored.Add(ctx, 1, typeAttr)
		return false, nil
	}

	if err := h(ctx, e); err != nil {
		d.failed.Add(ctx, 1, typeAttr)
		return true, err
	}
	d.processed.Add(ctx, 1, typeAttr)
	return true, nil
}

// HasHandler returns true if a handler is registered for the message type.
func (d *Dispatcher) HasHandler(msgType string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[msgType]
	return ok
}

func (d *Dispatcher) withLogging(msgType string, h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, e Event) error {
		start := time.Now()
		d.logger.Debug("handling event", "type", msgType, "mission", e.MissionID, "bytes", len(e.Payload))

		err := h(ctx, e)

		if err != nil {
			d.logger.Error("event failed", "type", msgType, "mission", e.MissionID, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "type", msgType, "mission", e.MissionID, "duration", time.Since(start))
		}

		return err
	}
}
