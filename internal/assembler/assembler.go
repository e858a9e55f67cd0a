// Package assembler turns the final position batch of a stream into a
// mission track and finishes the mission once its place label resolves.
package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/skytrace/missionmap/internal/geo"
	"github.com/skytrace/missionmap/internal/geocode"
	"github.com/skytrace/missionmap/internal/registry"
	"github.com/skytrace/missionmap/pkg/core"
	"github.com/skytrace/missionmap/pkg/streaming"
)

const instrumentationName = "github.com/skytrace/missionmap/internal/assembler"

// Outcome of one ingestion.
type Outcome string

const (
	OutcomeReady    Outcome = "ready"
	OutcomeFallback Outcome = "fallback"
	OutcomeEmpty    Outcome = "empty"
	OutcomeRemoved  Outcome = "removed"
)

// IngestStats describes one finished mission.
type IngestStats struct {
	MissionID   string
	Samples     int
	Issues      core.TrackIssues
	Enrichment  time.Duration
	Outcome     Outcome
	CompletedAt time.Time
}

// Recorder receives ingestion stats. Implementations must not block.
type Recorder interface {
	RecordIngest(IngestStats)
}

// Dependencies holds all dependencies for the assembler
type Dependencies struct {
	Registry *registry.Registry
	// Lookup may be nil, in which case every mission gets the coordinate label.
	Lookup   geocode.Lookup
	Recorder Recorder
	Logger   *slog.Logger
	// Timeout bounds a single enrichment; zero means no limit.
	Timeout time.Duration
}

// Assembler is safe for concurrent use by many jobs.
type Assembler struct {
	deps     Dependencies
	wg       sync.WaitGroup
	duration metric.Float64Histogram
}

// New creates an assembler.
func New(deps Dependencies) (*Assembler, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("assembler: registry is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	h, err := otel.Meter(instrumentationName).Float64Histogram(
		"assembler.enrichment.duration",
		metric.WithDescription("Time to resolve a mission label"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating enrichment histogram: %w", err)
	}
	return &Assembler{deps: deps, duration: h}, nil
}

// OnStreamComplete builds the track from raw and starts enrichment. It does
// not wait for the label.
func (a *Assembler) OnStreamComplete(ctx context.Context, missionID string, raw json.RawMessage) {
	var batch streaming.PositionBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		a.deps.Logger.Warn("undecodable position batch", "mission", missionID, "error", err)
		a.fail(missionID, fmt.Errorf("%w: %w", registry.ErrEmptyStream, err))
		return
	}

	track, issues := core.NewTrackRecord(batch.Lat, batch.Lng, batch.Alt, batch.TimeBootMs)
	if issues != 0 {
		a.deps.Logger.Warn("track series repaired", "mission", missionID, "issues", fmt.Sprintf("%06b", uint8(issues)))
	}
	if track.Empty() {
		a.fail(missionID, registry.ErrEmptyStream)
		a.record(IngestStats{MissionID: missionID, Issues: issues, Outcome: OutcomeEmpty})
		return
	}

	if !a.deps.Registry.Commit(missionID, registry.WithTrack(track)) {
		a.deps.Logger.Debug("mission gone before track commit", "mission", missionID)
		a.record(IngestStats{MissionID: missionID, Samples: track.Len(), Issues: issues, Outcome: OutcomeRemoved})
		return
	}

	first, _ := geo.FirstPoint(track)
	a.wg.Add(1)
	go a.enrich(context.WithoutCancel(ctx), missionID, first, track.Len(), issues)
}

// Wait blocks until outstanding enrichments finish.
func (a *Assembler) Wait() {
	a.wg.Wait()
}

func (a *Assembler) enrich(ctx context.Context, missionID string, at core.LatLng, samples int, issues core.TrackIssues) {
	defer a.wg.Done()

	if a.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.deps.Timeout)
		defer cancel()
	}

	start := time.Now()
	label, err := geocode.LabelOrFallback(ctx, a.deps.Lookup, at.Lat, at.Lng)
	elapsed := time.Since(start)
	a.duration.Record(ctx, elapsed.Seconds())

	outcome := OutcomeReady
	if err != nil {
		a.deps.Logger.Info("label lookup failed, using coordinates", "mission", missionID, "error", err)
		outcome = OutcomeFallback
	}

	// re-fetch and transform; the record may have changed or been removed
	if !a.deps.Registry.Commit(missionID, registry.MarkReady(label)) {
		a.deps.Logger.Debug("mission gone before ready commit", "mission", missionID)
		outcome = OutcomeRemoved
	} else {
		a.deps.Logger.Info("mission ready", "mission", missionID, "label", label, "samples", samples)
	}

	a.record(IngestStats{
		MissionID:  missionID,
		Samples:    samples,
		Issues:     issues,
		Enrichment: elapsed,
		Outcome:    outcome,
	})
}

func (a *Assembler) fail(missionID string, err error) {
	if !a.deps.Registry.Commit(missionID, registry.MarkFailed(err)) {
		a.deps.Logger.Debug("mission gone before failure commit", "mission", missionID)
	}
}

func (a *Assembler) record(s IngestStats) {
	if a.deps.Recorder == nil {
		return
	}
	s.CompletedAt = time.Now()
	a.deps.Recorder.RecordIngest(s)
}
