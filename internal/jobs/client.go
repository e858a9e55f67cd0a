// Package jobs runs one decoder job per submitted file and routes the
// decoded stream into the registry.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/skytrace/missionmap/internal/channel"
	"github.com/skytrace/missionmap/internal/decoder"
	"github.com/skytrace/missionmap/internal/dispatcher"
	"github.com/skytrace/missionmap/internal/registry"
	"github.com/skytrace/missionmap/pkg/streaming"
)

// Completer receives the last position batch of a finished stream.
type Completer interface {
	OnStreamComplete(ctx context.Context, missionID string, raw json.RawMessage)
	Wait()
}

// Config selects which message types the client acts on.
type Config struct {
	PositionTypes []string
	TerminalType  string
}

// DefaultConfig matches the stock log parser.
func DefaultConfig() Config {
	return Config{
		PositionTypes: streaming.DefaultPositionTypes,
		TerminalType:  streaming.TypeDoneLoading,
	}
}

// Dependencies holds all dependencies for the job client
type Dependencies struct {
	Registry  *registry.Registry
	Spawner   decoder.Spawner
	Assembler Completer
	Palette   *registry.Palette
	Logger    *slog.Logger
	// DispatcherLogger receives per-event debug logging; defaults to Logger.
	DispatcherLogger dispatcher.Logger
	// NewID generates mission ids; defaults to uuid.NewString.
	NewID func() string
}

// jobState is the per-mission buffer between events.
type jobState struct {
	mu         sync.Mutex
	latest     json.RawMessage
	batches    int
	terminated bool
}

// Client submits files and supervises their jobs.
type Client struct {
	deps       Dependencies
	cfg        Config
	dispatcher *dispatcher.Dispatcher

	mu     sync.Mutex
	states map[string]*jobState

	wg     sync.WaitGroup
	active atomic.Int64

	spawned metric.Int64Counter
	failed  metric.Int64Counter
}

// NewClient creates a client and registers its stream handlers.
func NewClient(deps Dependencies, cfg Config) (*Client, error) {
	if deps.Registry == nil || deps.Spawner == nil || deps.Assembler == nil {
		return nil, fmt.Errorf("jobs: registry, spawner and assembler are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.DispatcherLogger == nil {
		deps.DispatcherLogger = deps.Logger
	}
	if deps.Palette == nil {
		deps.Palette = registry.NewPalette()
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if len(cfg.PositionTypes) == 0 {
		cfg.PositionTypes = streaming.DefaultPositionTypes
	}
	if cfg.TerminalType == "" {
		cfg.TerminalType = streaming.TypeDoneLoading
	}

	d, err := dispatcher.New(deps.DispatcherLogger)
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	c := &Client{
		deps:       deps,
		cfg:        cfg,
		dispatcher: d,
		states:     make(map[string]*jobState),
	}
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	c.RegisterHandlers(d)
	return c, nil
}

// Submit registers a loading mission for src and starts its decoder job.
// The mission id is returned even when the spawn fails; the mission is then
// already failed and err wraps registry.ErrSpawnFailure.
func (c *Client) Submit(ctx context.Context, src decoder.Source) (string, error) {
	id := c.deps.NewID()
	if _, err := c.deps.Registry.CreatePending(id, src.Name, c.deps.Palette.Next()); err != nil {
		return "", err
	}

	stream, err := c.deps.Spawner.Spawn(ctx, src)
	if err != nil {
		spawnErr := fmt.Errorf("%w: %w", registry.ErrSpawnFailure, err)
		c.deps.Registry.Commit(id, registry.MarkFailed(spawnErr))
		c.failed.Add(ctx, 1)
		c.deps.Logger.Error("decoder spawn failed", "mission", id, "file", src.Name, "error", err)
		return id, spawnErr
	}

	c.spawned.Add(ctx, 1)
	c.deps.Logger.Info("decoder job started", "mission", id, "file", src.Name)

	st := &jobState{}
	c.mu.Lock()
	c.states[id] = st
	c.mu.Unlock()

	c.wg.Add(1)
	c.active.Add(1)
	// decoding is never cancelled once started
	go c.run(context.WithoutCancel(ctx), id, src, st, stream)
	return id, nil
}

// SubmitAll submits every source in order. Spawn failures do not stop the
// batch; the returned ids match sources index for index.
func (c *Client) SubmitAll(ctx context.Context, sources []decoder.Source) ([]string, error) {
	ids := make([]string, 0, len(sources))
	var firstErr error
	for _, src := range sources {
		id, err := c.Submit(ctx, src)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		ids = append(ids, id)
	}
	return ids, firstErr
}

// Wait blocks until every job and every enrichment it triggered has ended.
func (c *Client) Wait() {
	c.wg.Wait()
	c.deps.Assembler.Wait()
}

// Active returns the number of running jobs.
func (c *Client) Active() int {
	return int(c.active.Load())
}

func (c *Client) run(ctx context.Context, id string, src decoder.Source, st *jobState, stream channel.Receiver[streaming.Envelope]) {
	defer c.wg.Done()
	defer c.active.Add(-1)
	defer func() {
		c.mu.Lock()
		delete(c.states, id)
		c.mu.Unlock()
	}()

	start := time.Now()
	events := 0
	for env := range stream.Receive() {
		st.mu.Lock()
		done := st.terminated
		st.mu.Unlock()
		if done {
			// keep draining so the producer can finish
			continue
		}

		events++
		_, err := c.dispatcher.Dispatch(ctx, dispatcher.Event{
			MissionID: id,
			Type:      env.Type,
			Payload:   env.Payload,
			Timestamp: time.Now(),
		})
		if err != nil {
			c.deps.Logger.Warn("event handling failed", "mission", id, "type", env.Type, "error", err)
		}
	}

	st.mu.Lock()
	terminated := st.terminated
	st.mu.Unlock()
	if !terminated {
		c.deps.Registry.Commit(id, registry.MarkFailed(registry.ErrStreamAborted))
		c.failed.Add(ctx, 1)
		c.deps.Logger.Warn("decoder stream ended without terminal event", "mission", id, "file", src.Name, "events", events)
		return
	}
	c.deps.Logger.Debug("decoder job finished", "mission", id, "file", src.Name, "events", events, "duration", time.Since(start))
}

func (c *Client) state(id string) (*jobState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[id]
	return st, ok
}
