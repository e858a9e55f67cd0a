package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/skytrace/missionmap/pkg/core"
)

// TrackLineString builds a lon/lat LineString from a track record, with Z set
// to altitude in meters when the record has an altitude series.
func TrackLineString(t core.TrackRecord) (geom.LineString, error) {
	n := t.Len()
	if n < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 points, got %d", n)
	}

	withAlt := len(t.Alt) == n
	dim := geom.DimXY
	stride := 2
	if withAlt {
		dim = geom.DimXYZ
		stride = 3
	}

	flatCoords := make([]float64, 0, n*stride)
	for i := 0; i < n; i++ {
		flatCoords = append(flatCoords, ScaleDegrees(t.Lng[i]), ScaleDegrees(t.Lat[i]))
		if withAlt {
			flatCoords = append(flatCoords, ScaleAltitude(t.Alt[i]))
		}
	}

	seq := geom.NewSequence(flatCoords, dim)
	return geom.NewLineString(seq)
}
