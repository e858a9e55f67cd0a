package mission

import (
	"sync"
	"sync/atomic"

	"github.com/skytrace/missionmap/internal/hover"
	"github.com/skytrace/missionmap/internal/registry"
	"github.com/skytrace/missionmap/pkg/core"
)

// Session holds the selected mission and the shared hover cell read by
// both the chart and the map.
type Session struct {
	registry *registry.Registry

	mu       sync.Mutex
	selected string

	hover atomic.Pointer[core.HoverPosition]
}

// NewSession creates a session with nothing selected.
func NewSession(reg *registry.Registry) *Session {
	return &Session{registry: reg}
}

// Select makes id the selected mission and clears the hover. It returns
// false if the mission does not exist.
func (s *Session) Select(id string) bool {
	if _, ok := s.registry.Get(id); !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
	s.hover.Store(nil)
	return true
}

// Deselect clears the selection and the hover.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
	s.hover.Store(nil)
}

// Forget deselects id if it is the current selection.
func (s *Session) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == id {
		s.selected = ""
		s.hover.Store(nil)
	}
}

// Selected returns the selected mission id.
func (s *Session) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// Hover resolves a chart sample against the selected mission. Without a
// ready selection the hover is cleared.
func (s *Session) Hover(sample core.ChartSample) (core.HoverPosition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == "" {
		s.hover.Store(nil)
		return core.HoverPosition{}, false
	}
	m, ok := s.registry.Get(s.selected)
	if !ok || m.State != core.StateReady {
		s.hover.Store(nil)
		return core.HoverPosition{}, false
	}

	pos, ok := hover.Resolve(m.Track, sample)
	if !ok {
		s.hover.Store(nil)
		return core.HoverPosition{}, false
	}
	s.hover.Store(&pos)
	return pos, true
}

// Leave clears the hover when the pointer exits the chart.
func (s *Session) Leave() {
	s.hover.Store(nil)
}

// Current returns the hovered position, if any.
func (s *Session) Current() (core.HoverPosition, bool) {
	p := s.hover.Load()
	if p == nil {
		return core.HoverPosition{}, false
	}
	return *p, true
}
