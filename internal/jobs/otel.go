package jobs

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/skytrace/missionmap/internal/jobs"

func (c *Client) initMetrics() error {
	m := otel.Meter(instrumentationName)

	var err error
	c.spawned, err = m.Int64Counter(
		"jobs.spawned",
		metric.WithDescription("Decoder jobs started"),
	)
	if err != nil {
		return fmt.Errorf("creating spawned counter: %w", err)
	}

	c.failed, err = m.Int64Counter(
		"jobs.failed",
		metric.WithDescription("Missions failed during ingestion"),
	)
	if err != nil {
		return fmt.Errorf("creating failed counter: %w", err)
	}
	return nil
}
