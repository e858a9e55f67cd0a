package registry

import (
	"errors"

	"github.com/skytrace/missionmap/pkg/core"
)

// Failure reasons recorded on failed missions.
var (
	ErrSpawnFailure  = errors.New("spawn failure")
	ErrEmptyStream   = errors.New("empty stream")
	ErrStreamAborted = errors.New("stream aborted")
)

// WithTrack stores the assembled track. The state is left unchanged and
// the update is skipped once the mission is terminal.
func WithTrack(track core.TrackRecord) Updater {
	return func(m core.Mission) core.Mission {
		if m.State.Terminal() {
			return m
		}
		m.Track = track
		return m
	}
}

// MarkReady sets the label and moves a loading mission to ready.
func MarkReady(label string) Updater {
	return func(m core.Mission) core.Mission {
		if m.State != core.StateLoading {
			return m
		}
		m.Label = label
		m.State = core.StateReady
		return m
	}
}

// MarkFailed moves a loading mission to failed with err as the reason.
func MarkFailed(err error) Updater {
	return func(m core.Mission) core.Mission {
		if m.State != core.StateLoading {
			return m
		}
		m.State = core.StateFailed
		if err != nil {
			m.FailureReason = err.Error()
		}
		return m
	}
}
