package geo

import (
	"errors"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Web Mercator constants. The projection is undefined at the poles, so
// latitudes are clamped to the square-world limit the slippy-map scheme uses.
const (
	MaxMercatorLat = 85.05112878
	// EarthCircumference is the EPSG:3857 world width in meters.
	EarthCircumference = 2 * math.Pi * 6378137
)

// ErrInvalidCoordinates is returned when a coordinate is out of range or NaN.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

var toMercator = wgs84.EPSG().Transform(4326, 3857)

// Validate checks that lat/lng are finite and inside the WGS84 range.
func Validate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// MercatorXY projects a WGS84 coordinate (EPSG:4326) to Web Mercator meters
// (EPSG:3857).
func MercatorXY(lat, lng float64) geom.XY {
	lat = math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, lat))
	x, y, _ := toMercator(lng, lat, 0)
	return geom.XY{X: x, Y: y}
}
