// Package hover correlates altitude chart samples with map positions.
//
// A chart sample is joined to the track by its timestamp, never by its
// altitude value, since altitudes repeat within a flight.
package hover

import (
	"slices"

	"github.com/skytrace/missionmap/internal/geo"
	"github.com/skytrace/missionmap/pkg/core"
)

// Resolve maps a chart sample to the track position it was built from.
// The sample index is trusted when its timestamp still matches; otherwise
// the first sample with the same timestamp wins.
func Resolve(track core.TrackRecord, s core.ChartSample) (core.HoverPosition, bool) {
	if !track.HasTimestamps() {
		return core.HoverPosition{}, false
	}

	idx := s.Index
	if idx < 0 || idx >= track.Len() || track.TimeBootMs[idx] != s.Timestamp {
		var found bool
		idx, found = slices.BinarySearch(track.TimeBootMs, s.Timestamp)
		if !found {
			return core.HoverPosition{}, false
		}
	}

	p := geo.ScaledPoint(track, idx)
	return core.HoverPosition{Lat: p.Lat, Lng: p.Lng, Index: idx}, true
}

// Series builds the altitude chart points. It is empty unless the track has
// both altitude and timestamps.
func Series(track core.TrackRecord) []core.ChartPoint {
	if !track.HasAltitude() {
		return nil
	}

	t0 := track.TimeBootMs[0]
	out := make([]core.ChartPoint, track.Len())
	for i := range out {
		ts := track.TimeBootMs[i]
		out[i] = core.ChartPoint{
			Index:     i,
			Timestamp: ts,
			Seconds:   float64(ts-t0) / 1000,
			AltitudeM: geo.ScaleAltitude(track.Alt[i]),
		}
	}
	return out
}
