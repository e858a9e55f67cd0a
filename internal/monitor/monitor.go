// Package monitor samples pipeline status and writes it to a status file.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/skytrace/missionmap/internal/registry"
	"github.com/skytrace/missionmap/pkg/core"
)

// JobCounter reports running decoder jobs.
type JobCounter interface {
	Active() int
}

// CacheStats reports label cache hits and misses.
type CacheStats interface {
	Stats() (hits, misses int)
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Registry *registry.Registry
	Jobs     JobCounter
	// Labels may be nil when enrichment runs uncached.
	Labels CacheStats
	Logger *slog.Logger
	// StatusFile is rewritten on every tick; empty disables the file.
	StatusFile string
	Interval   time.Duration
}

// Status is one sample of the pipeline.
type Status struct {
	Time        time.Time `json:"time"`
	Uptime      string    `json:"uptime"`
	Loading     int       `json:"loading"`
	Ready       int       `json:"ready"`
	Failed      int       `json:"failed"`
	ActiveJobs  int       `json:"activeJobs"`
	CacheHits   int       `json:"cacheHits"`
	CacheMisses int       `json:"cacheMisses"`
}

// Service manages status monitoring
type Service struct {
	deps    Dependencies
	started time.Time

	mu        sync.RWMutex
	isRunning bool
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		deps:    deps,
		started: time.Now(),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status returns the current program status.
func (s *Service) Status() Status {
	st := Status{
		Time:   time.Now(),
		Uptime: time.Since(s.started).Truncate(time.Second).String(),
	}
	if s.deps.Registry != nil {
		counts := s.deps.Registry.Counts()
		st.Loading = counts[core.StateLoading]
		st.Ready = counts[core.StateReady]
		st.Failed = counts[core.StateFailed]
	}
	if s.deps.Jobs != nil {
		st.ActiveJobs = s.deps.Jobs.Active()
	}
	if s.deps.Labels != nil {
		st.CacheHits, st.CacheMisses = s.deps.Labels.Stats()
	}
	return st
}

// LogAttrs returns the live counts for logging.ContextHandler.
func (s *Service) LogAttrs() []slog.Attr {
	st := s.Status()
	return []slog.Attr{
		slog.Int("loading", st.Loading),
		slog.Int("activeJobs", st.ActiveJobs),
	}
}

// Run samples the status every interval until ctx is done. A second call
// while running returns immediately.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	logger := s.deps.Logger
	logger.Debug("Starting status monitor", "interval", s.deps.Interval)

	var statusFile *os.File
	if s.deps.StatusFile != "" {
		f, err := os.Create(s.deps.StatusFile)
		if err != nil {
			return fmt.Errorf("create status file: %w", err)
		}
		defer f.Close()
		statusFile = f
	}

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	var last Status
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		st := s.Status()
		if statusFile != nil {
			if err := writeStatus(statusFile, st); err != nil {
				logger.Error("Error writing status file", "error", err)
			}
		}
		if st.Loading != last.Loading || st.Ready != last.Ready || st.Failed != last.Failed {
			logger.Info("Pipeline status",
				"loading", st.Loading, "ready", st.Ready, "failed", st.Failed, "activeJobs", st.ActiveJobs)
		}
		last = st
	}
}

func writeStatus(f *os.File, st Status) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}
