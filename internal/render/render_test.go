package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytrace/missionmap/pkg/core"
)

func testTrack(withAlt bool) core.TrackRecord {
	var alt []int32
	if withAlt {
		alt = []int32{65000, 65100, 65200}
	}
	track, _ := core.NewTrackRecord(
		[]int32{400000000, 400100000, 400200000},
		[]int32{-37000000, -37100000, -37200000},
		alt,
		[]uint32{0, 1000, 2000},
	)
	return track
}

func TestMarkers_ReadyOnly(t *testing.T) {
	missions := []core.Mission{
		{ID: "a", State: core.StateReady, Color: "#FF6B6B", Label: "Madrid", Track: testTrack(false)},
		{ID: "b", State: core.StateLoading, Track: testTrack(false)},
		{ID: "c", State: core.StateFailed},
		{ID: "d", State: core.StateReady},
	}

	markers := Markers(missions)

	require.Len(t, markers, 1)
	assert.Equal(t, "a", markers[0].MissionID)
	assert.InDelta(t, 40.0, markers[0].Lat, 1e-9)
	assert.InDelta(t, -3.7, markers[0].Lng, 1e-9)
	assert.Equal(t, "#FF6B6B", markers[0].Color)
	assert.Equal(t, "Madrid", markers[0].Name)
}

func TestPolyline(t *testing.T) {
	pts := Polyline(testTrack(true))

	require.Len(t, pts, 3)
	assert.InDelta(t, 40.01, pts[1].Lat, 1e-9)
	assert.InDelta(t, -3.71, pts[1].Lng, 1e-9)
	require.NotNil(t, pts[1].Alt)
	assert.InDelta(t, 651.0, *pts[1].Alt, 1e-9)
}

func TestPolyline_NoAltitude(t *testing.T) {
	pts := Polyline(testTrack(false))

	require.Len(t, pts, 3)
	for _, p := range pts {
		assert.Nil(t, p.Alt)
	}
	raw, err := json.Marshal(pts[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alt")
}

func TestGeoJSON(t *testing.T) {
	m := core.Mission{ID: "a", FileName: "a.bin", Label: "Madrid", Track: testTrack(false)}

	raw, err := GeoJSON(m)
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Feature", doc.Type)
	assert.Equal(t, "LineString", doc.Geometry.Type)
	require.Len(t, doc.Geometry.Coordinates, 3)
	assert.InDelta(t, -3.7, doc.Geometry.Coordinates[0][0], 1e-9)
	assert.InDelta(t, 40.0, doc.Geometry.Coordinates[0][1], 1e-9)
	assert.Equal(t, "Madrid", doc.Properties["label"])
}

func TestGeoJSON_TooShort(t *testing.T) {
	track, _ := core.NewTrackRecord([]int32{1}, []int32{1}, nil, nil)

	_, err := GeoJSON(core.Mission{ID: "a", Track: track})
	assert.Error(t, err)
}

func TestSummarizeAll(t *testing.T) {
	s := SummarizeAll([]core.Mission{
		{ID: "a", State: core.StateReady, Track: testTrack(true)},
		{ID: "b", State: core.StateLoading},
		{ID: "c", State: core.StateFailed, FailureReason: "empty stream"},
	})

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Ready)
	assert.Equal(t, 1, s.Loading)
	assert.Equal(t, 1, s.Failed)
	require.Len(t, s.Missions, 3)
	assert.Equal(t, 3, s.Missions[0].Samples)
	assert.True(t, s.Missions[0].HasAltitude)
	assert.Equal(t, "empty stream", s.Missions[2].FailureReason)
}
