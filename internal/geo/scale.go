package geo

import "github.com/skytrace/missionmap/pkg/core"

// Fixed-point divisors used by the flight log format.
const (
	// PositionScale converts degrees x 1e7 to degrees.
	PositionScale = 1e7
	// AltitudeScale converts centimeters to meters.
	AltitudeScale = 100
)

// ScaleDegrees converts a fixed-point coordinate to degrees.
func ScaleDegrees(raw int32) float64 {
	return float64(raw) / PositionScale
}

// ScaleAltitude converts a fixed-point altitude to meters.
func ScaleAltitude(raw int32) float64 {
	return float64(raw) / AltitudeScale
}

// ScaledPoint returns sample i of t in degrees. i must be in range.
func ScaledPoint(t core.TrackRecord, i int) core.LatLng {
	return core.LatLng{
		Lat: ScaleDegrees(t.Lat[i]),
		Lng: ScaleDegrees(t.Lng[i]),
	}
}

// FirstPoint returns the first sample of t, false if t is empty.
func FirstPoint(t core.TrackRecord) (core.LatLng, bool) {
	if t.Empty() {
		return core.LatLng{}, false
	}
	return ScaledPoint(t, 0), true
}
