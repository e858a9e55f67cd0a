package geo

import (
	"testing"

	"github.com/skytrace/missionmap/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackLineString_Valid(t *testing.T) {
	track, _ := core.NewTrackRecord(
		[]int32{400000000, 400100000, 400200000},
		[]int32{-37000000, -37100000, -37200000},
		nil, nil,
	)

	ls, err := TrackLineString(track)
	require.NoError(t, err)

	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())
	assert.InDelta(t, -3.7, seq.GetXY(0).X, 1e-9)
	assert.InDelta(t, 40.0, seq.GetXY(0).Y, 1e-9)
	assert.InDelta(t, -3.72, seq.GetXY(2).X, 1e-9)
	assert.InDelta(t, 40.02, seq.GetXY(2).Y, 1e-9)
}

func TestTrackLineString_TooFewPoints(t *testing.T) {
	track, _ := core.NewTrackRecord([]int32{400000000}, []int32{-37000000}, nil, nil)

	_, err := TrackLineString(track)
	require.Error(t, err)
}

func TestTrackLineString_GeoJSON(t *testing.T) {
	track, _ := core.NewTrackRecord(
		[]int32{400000000, 400100000},
		[]int32{-37000000, -37100000},
		[]int32{10000, 12000},
		[]uint32{1000, 2000},
	)

	ls, err := TrackLineString(track)
	require.NoError(t, err)

	raw, err := ls.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"LineString"`)
	assert.Contains(t, string(raw), "-3.7")
	assert.Contains(t, string(raw), "100")
}
