// Package registry holds the authoritative set of ingested missions.
//
// Every mutation goes through Commit, which re-fetches the current record,
// applies a pure updater and stores the result under a per-mission lock.
// Commits to different missions never contend; commits to the same mission
// are applied one at a time.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/skytrace/missionmap/internal/channel"
	"github.com/skytrace/missionmap/pkg/core"
)

// ErrDuplicateID is returned by CreatePending when the id is already taken.
var ErrDuplicateID = errors.New("duplicate mission id")

// Updater transforms a mission record. It must not retain the argument.
type Updater func(core.Mission) core.Mission

// ChangeKind identifies what happened to a mission.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
)

// Change is published to subscribers after every state change.
type Change struct {
	Kind    ChangeKind   `json:"kind"`
	Mission core.Mission `json:"mission"`
}

type entry struct {
	mu      sync.Mutex
	mission core.Mission
	removed bool
}

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	seq     uint64
	now     func() time.Time

	subMu sync.Mutex
	subs  map[*Subscription]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		subs:    make(map[*Subscription]struct{}),
		now:     time.Now,
	}
}

// CreatePending registers a new mission in the loading state.
func (r *Registry) CreatePending(id, fileName, color string) (core.Mission, error) {
	r.mu.Lock()
	if _, ok := r.entries[id]; ok {
		r.mu.Unlock()
		return core.Mission{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	r.seq++
	e := &entry{mission: core.Mission{
		ID:          id,
		FileName:    fileName,
		Color:       color,
		State:       core.StateLoading,
		SubmittedAt: r.now(),
		Seq:         r.seq,
	}}
	// lock the entry before it becomes visible so the created event is
	// published ahead of any commit
	e.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()

	m := e.mission
	r.publish(Change{Kind: ChangeCreated, Mission: m})
	e.mu.Unlock()
	return m, nil
}

// Commit applies updater to the current record of id. It returns false and
// does nothing if the mission does not exist or was removed. ID and Seq
// are preserved whatever the updater returns. No change is published when
// the updater leaves the record as it was.
func (r *Registry) Commit(id string, updater Updater) bool {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return false
	}

	next := updater(e.mission)
	next.ID = e.mission.ID
	next.Seq = e.mission.Seq
	next.SubmittedAt = e.mission.SubmittedAt
	if unchanged(e.mission, next) {
		return true
	}
	e.mission = next

	r.publish(Change{Kind: ChangeUpdated, Mission: next})
	return true
}

// unchanged compares track series by identity; updaters replace a track
// rather than edit it in place.
func unchanged(a, b core.Mission) bool {
	return a.FileName == b.FileName &&
		a.Color == b.Color &&
		a.State == b.State &&
		a.Label == b.Label &&
		a.FailureReason == b.FailureReason &&
		sameSeries(a.Track.Lat, b.Track.Lat) &&
		sameSeries(a.Track.Lng, b.Track.Lng) &&
		sameSeries(a.Track.Alt, b.Track.Alt) &&
		sameSeries(a.Track.TimeBootMs, b.Track.TimeBootMs)
}

func sameSeries[T any](a, b []T) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// Get returns a copy of the mission.
func (r *Registry) Get(id string) (core.Mission, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return core.Mission{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return core.Mission{}, false
	}
	return e.mission, true
}

// List returns every mission, newest submission first.
func (r *Registry) List() []core.Mission {
	return r.filter(func(core.Mission) bool { return true })
}

// ListReady returns the ready missions, newest submission first.
func (r *Registry) ListReady() []core.Mission {
	return r.filter(func(m core.Mission) bool { return m.State == core.StateReady })
}

func (r *Registry) filter(keep func(core.Mission) bool) []core.Mission {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]core.Mission, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		m, removed := e.mission, e.removed
		e.mu.Unlock()
		if !removed && keep(m) {
			out = append(out, m)
		}
	}

	slices.SortFunc(out, func(a, b core.Mission) int {
		switch {
		case a.Seq > b.Seq:
			return -1
		case a.Seq < b.Seq:
			return 1
		}
		return 0
	})
	return out
}

// Remove deletes the mission. Later commits for id are no-ops.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.removed = true
	r.publish(Change{Kind: ChangeRemoved, Mission: e.mission})
	return true
}

// Counts returns the number of missions per state.
func (r *Registry) Counts() map[core.MissionState]int {
	counts := map[core.MissionState]int{
		core.StateLoading: 0,
		core.StateReady:   0,
		core.StateFailed:  0,
	}
	for _, m := range r.List() {
		counts[m.State]++
	}
	return counts
}

// Subscription receives every Change published after Subscribe returned.
type Subscription struct {
	r  *Registry
	ch *channel.Unbounded[Change]
}

// Receive returns the change stream. It is closed by Unsubscribe.
func (s *Subscription) Receive() <-chan Change {
	return s.ch.Receive()
}

// Unsubscribe stops delivery. Changes already queued are still delivered.
func (s *Subscription) Unsubscribe() {
	s.r.subMu.Lock()
	delete(s.r.subs, s)
	s.r.subMu.Unlock()
	s.ch.Close()
}

// Subscribe starts a new change stream.
func (r *Registry) Subscribe() *Subscription {
	s := &Subscription{r: r, ch: channel.NewUnbounded[Change]()}
	r.subMu.Lock()
	r.subs[s] = struct{}{}
	r.subMu.Unlock()
	return s
}

func (r *Registry) publish(c Change) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for s := range r.subs {
		s.ch.Send(c)
	}
}
