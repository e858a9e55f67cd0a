package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skytrace/missionmap/pkg/core"
)

func TestLifecycle_ExactlyOneTerminalTransition(t *testing.T) {
	tests := []struct {
		name    string
		updates []Updater
		state   core.MissionState
		label   string
		reason  string
	}{
		{"ready", []Updater{MarkReady("Madrid")}, core.StateReady, "Madrid", ""},
		{"failed", []Updater{MarkFailed(ErrSpawnFailure)}, core.StateFailed, "", "spawn failure"},
		{"ready then failed", []Updater{MarkReady("Madrid"), MarkFailed(ErrStreamAborted)}, core.StateReady, "Madrid", ""},
		{"failed then ready", []Updater{MarkFailed(ErrEmptyStream), MarkReady("Madrid")}, core.StateFailed, "", "empty stream"},
		{"duplicate ready", []Updater{MarkReady("first"), MarkReady("second")}, core.StateReady, "first", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := core.Mission{ID: "m1", State: core.StateLoading}
			for _, u := range tt.updates {
				m = u(m)
			}
			assert.Equal(t, tt.state, m.State)
			assert.Equal(t, tt.label, m.Label)
			assert.Equal(t, tt.reason, m.FailureReason)
		})
	}
}

func TestWithTrack_SkippedWhenTerminal(t *testing.T) {
	track := core.TrackRecord{Lat: []int32{1}, Lng: []int32{1}}

	loading := WithTrack(track)(core.Mission{State: core.StateLoading})
	assert.Equal(t, 1, loading.Track.Len())
	assert.Equal(t, core.StateLoading, loading.State)

	failed := WithTrack(track)(core.Mission{State: core.StateFailed})
	assert.True(t, failed.Track.Empty())
}
