package jobs

import (
	"context"
	"fmt"

	"github.com/skytrace/missionmap/internal/dispatcher"
	"github.com/skytrace/missionmap/internal/registry"
)

// RegisterHandlers registers the stream handlers with the dispatcher.
// Every other message type is ignored.
func (c *Client) RegisterHandlers(d *dispatcher.Dispatcher) {
	for _, t := range c.cfg.PositionTypes {
		d.Register(t, c.handlePosition, dispatcher.Logged())
	}
	d.Register(c.cfg.TerminalType, c.handleTerminal, dispatcher.Logged())
}

// handlePosition keeps the latest batch of any position type. Batches are
// not merged or inspected here.
func (c *Client) handlePosition(_ context.Context, e dispatcher.Event) error {
	st, ok := c.state(e.MissionID)
	if !ok {
		return fmt.Errorf("no job for mission %s", e.MissionID)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.latest = e.Payload
	st.batches++
	return nil
}

func (c *Client) handleTerminal(ctx context.Context, e dispatcher.Event) error {
	st, ok := c.state(e.MissionID)
	if !ok {
		return fmt.Errorf("no job for mission %s", e.MissionID)
	}

	st.mu.Lock()
	st.terminated = true
	latest, batches := st.latest, st.batches
	st.latest = nil
	st.mu.Unlock()

	if len(latest) == 0 {
		c.deps.Registry.Commit(e.MissionID, registry.MarkFailed(registry.ErrEmptyStream))
		c.failed.Add(ctx, 1)
		c.deps.Logger.Warn("decoder finished without position data", "mission", e.MissionID)
		return nil
	}

	c.deps.Logger.Debug("stream complete", "mission", e.MissionID, "batches", batches, "bytes", len(latest))
	c.deps.Assembler.OnStreamComplete(ctx, e.MissionID, latest)
	return nil
}
