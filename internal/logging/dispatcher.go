package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// DispatcherLogger feeds the jobs dispatcher's per-event log lines into a
// zerolog.Logger. It satisfies dispatcher.Logger.
type DispatcherLogger struct {
	logger zerolog.Logger
}

func NewDispatcherLogger(logger zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{logger: logger}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	withFields(l.logger.Debug(), keysAndValues).Msg(msg)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	withFields(l.logger.Info(), keysAndValues).Msg(msg)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	withFields(l.logger.Error(), keysAndValues).Msg(msg)
}

// withFields adds key/value pairs in order with typed zerolog fields. A
// trailing key without a value and non-string keys are dropped.
func withFields(ev *zerolog.Event, keysAndValues []any) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		switch v := keysAndValues[i+1].(type) {
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	return ev
}
