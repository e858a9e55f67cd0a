package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTrackRecord_Aligned(t *testing.T) {
	track, issues := NewTrackRecord(
		[]int32{1, 2, 3},
		[]int32{4, 5, 6},
		[]int32{100, 200, 300},
		[]uint32{10, 20, 30},
	)

	assert.Zero(t, issues)
	assert.Equal(t, 3, track.Len())
	assert.True(t, track.HasTimestamps())
	assert.True(t, track.HasAltitude())
}

func TestNewTrackRecord_TruncatesPositions(t *testing.T) {
	track, issues := NewTrackRecord([]int32{1, 2, 3, 4}, []int32{4, 5}, nil, nil)

	assert.True(t, issues.Has(IssuePositionTruncated))
	assert.Equal(t, 2, track.Len())
	assert.Equal(t, []int32{1, 2}, track.Lat)
	assert.Equal(t, []int32{4, 5}, track.Lng)
}

func TestNewTrackRecord_OptionalSeries(t *testing.T) {
	tests := []struct {
		name     string
		alt      []int32
		time     []uint32
		want     TrackIssues
		altLen   int
		timeLen  int
		altChart bool
	}{
		{"both absent", nil, nil, 0, 0, 0, false},
		{"alt longer", []int32{1, 2, 3, 4}, []uint32{1, 2, 3}, IssueAltitudeTruncated, 3, 3, true},
		{"alt shorter", []int32{1, 2}, []uint32{1, 2, 3}, IssueAltitudeDropped, 0, 3, false},
		{"time longer", []int32{1, 2, 3}, []uint32{1, 2, 3, 4}, IssueTimeTruncated, 3, 3, true},
		{"time shorter", []int32{1, 2, 3}, []uint32{1}, IssueTimeDropped, 3, 0, false},
		{"time decreasing", []int32{1, 2, 3}, []uint32{5, 4, 6}, IssueTimeNotMonotonic, 3, 0, false},
		{"time repeated", []int32{1, 2, 3}, []uint32{5, 5, 6}, 0, 3, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, issues := NewTrackRecord([]int32{1, 2, 3}, []int32{1, 2, 3}, tt.alt, tt.time)

			assert.Equal(t, tt.want, issues)
			assert.Len(t, track.Alt, tt.altLen)
			assert.Len(t, track.TimeBootMs, tt.timeLen)
			assert.Equal(t, tt.altChart, track.HasAltitude())
		})
	}
}

func TestNewTrackRecord_DoesNotAliasBeyondLength(t *testing.T) {
	lat := []int32{1, 2, 3}
	track, _ := NewTrackRecord(lat, []int32{1, 2}, nil, nil)

	// appending to the record must not overwrite the caller's backing array
	_ = append(track.Lat, 99)
	assert.Equal(t, int32(3), lat[2])
}

func TestNewTrackRecord_Empty(t *testing.T) {
	track, _ := NewTrackRecord(nil, nil, []int32{1}, []uint32{1})

	assert.True(t, track.Empty())
	assert.Nil(t, track.Alt)
	assert.Nil(t, track.TimeBootMs)
	assert.False(t, track.HasAltitude())
}

func TestMissionState_Terminal(t *testing.T) {
	assert.False(t, StateLoading.Terminal())
	assert.True(t, StateReady.Terminal())
	assert.True(t, StateFailed.Terminal())
}
