package dispatcher

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/skytrace/missionmap/internal/dispatcher"

// initMetrics registers the per-tag event counters on the global meter,
// a no-op until the binary installs a provider.
func (d *Dispatcher) initMetrics() error {
	m := otel.Meter(instrumentationName)

	var err error
	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Decoder envelopes handled"),
	)
	if err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}

	d.ignored, err = m.Int64Counter(
		"dispatcher.events.ignored",
		metric.WithDescription("Decoder envelopes with a type tag nobody handles"),
	)
	if err != nil {
		return fmt.Errorf("creating ignored counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.events.failed",
		metric.WithDescription("Decoder envelopes whose handler returned an error"),
	)
	if err != nil {
		return fmt.Errorf("creating failed counter: %w", err)
	}
	return nil
}

func eventType(tag string) metric.AddOption {
	return metric.WithAttributes(attribute.String("type", tag))
}
