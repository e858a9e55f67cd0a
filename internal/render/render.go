// Package render shapes registry state into the values map and chart
// views draw.
package render

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/skytrace/missionmap/internal/geo"
	"github.com/skytrace/missionmap/pkg/core"
)

// Markers returns one marker per ready mission, at its first sample.
func Markers(missions []core.Mission) []core.Marker {
	out := make([]core.Marker, 0, len(missions))
	for _, m := range missions {
		if m.State != core.StateReady {
			continue
		}
		p, ok := geo.FirstPoint(m.Track)
		if !ok {
			continue
		}
		out = append(out, core.Marker{
			MissionID: m.ID,
			Lat:       p.Lat,
			Lng:       p.Lng,
			Color:     m.Color,
			Name:      m.Label,
		})
	}
	return out
}

// Polyline returns the ordered vertices of a track.
func Polyline(t core.TrackRecord) []core.PolylinePoint {
	withAlt := len(t.Alt) == t.Len()
	out := make([]core.PolylinePoint, t.Len())
	for i := range out {
		p := geo.ScaledPoint(t, i)
		out[i] = core.PolylinePoint{Lat: p.Lat, Lng: p.Lng}
		if withAlt {
			alt := geo.ScaleAltitude(t.Alt[i])
			out[i].Alt = &alt
		}
	}
	return out
}

// LineString returns the track as a lon/lat geometry.
func LineString(t core.TrackRecord) (geom.LineString, error) {
	return geo.TrackLineString(t)
}

// GeoJSON encodes a mission track as a GeoJSON Feature.
func GeoJSON(m core.Mission) ([]byte, error) {
	ls, err := LineString(m.Track)
	if err != nil {
		return nil, fmt.Errorf("mission %s: %w", m.ID, err)
	}
	f := geom.GeoJSONFeature{
		Geometry: ls.AsGeometry(),
		ID:       m.ID,
		Properties: map[string]interface{}{
			"fileName": m.FileName,
			"label":    m.Label,
			"color":    m.Color,
			"samples":  m.Track.Len(),
		},
	}
	return json.Marshal(f)
}

// MissionSummary is a mission without its sample arrays.
type MissionSummary struct {
	ID            string            `json:"id"`
	FileName      string            `json:"fileName"`
	Color         string            `json:"color"`
	State         core.MissionState `json:"state"`
	Label         string            `json:"label,omitempty"`
	FailureReason string            `json:"failureReason,omitempty"`
	Samples       int               `json:"samples"`
	HasAltitude   bool              `json:"hasAltitude"`
}

// Summary describes the whole registry.
type Summary struct {
	Total    int              `json:"total"`
	Loading  int              `json:"loading"`
	Ready    int              `json:"ready"`
	Failed   int              `json:"failed"`
	Missions []MissionSummary `json:"missions"`
}

// Summarize returns a mission summary.
func Summarize(m core.Mission) MissionSummary {
	return MissionSummary{
		ID:            m.ID,
		FileName:      m.FileName,
		Color:         m.Color,
		State:         m.State,
		Label:         m.Label,
		FailureReason: m.FailureReason,
		Samples:       m.Track.Len(),
		HasAltitude:   m.Track.HasAltitude(),
	}
}

// SummarizeAll returns the state counts and summaries, in the given order.
func SummarizeAll(missions []core.Mission) Summary {
	s := Summary{Total: len(missions), Missions: make([]MissionSummary, 0, len(missions))}
	for _, m := range missions {
		switch m.State {
		case core.StateLoading:
			s.Loading++
		case core.StateReady:
			s.Ready++
		case core.StateFailed:
			s.Failed++
		}
		s.Missions = append(s.Missions, Summarize(m))
	}
	return s
}
