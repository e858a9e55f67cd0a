// Package viewport derives a map camera from a set of points.
package viewport

import (
	"math"

	"github.com/skytrace/missionmap/internal/geo"
	"github.com/skytrace/missionmap/pkg/core"
)

// Config controls framing. Zero fields take the DefaultConfig value.
type Config struct {
	// CloseZoom is used for a single point or a cluster below the threshold.
	CloseZoom float64
	// DegenerateThreshold is the span, in degrees, under which both axes
	// count as a single location.
	DegenerateThreshold float64
	// PaddingRatio extends each side of the rectangle by this share of its span.
	PaddingRatio float64
	MaxZoom      float64
	Width        int
	Height       int
	TileSize     int
}

// DefaultConfig returns the stock map settings.
func DefaultConfig() Config {
	return Config{
		CloseZoom:           15,
		DegenerateThreshold: 0.01,
		PaddingRatio:        0.1,
		MaxZoom:             15,
		Width:               1024,
		Height:              768,
		TileSize:            256,
	}
}

// Fitter is stateless and safe for concurrent use.
type Fitter struct {
	cfg Config
}

// New creates a fitter.
func New(cfg Config) *Fitter {
	def := DefaultConfig()
	if cfg.CloseZoom <= 0 {
		cfg.CloseZoom = def.CloseZoom
	}
	if cfg.DegenerateThreshold <= 0 {
		cfg.DegenerateThreshold = def.DegenerateThreshold
	}
	if cfg.PaddingRatio < 0 {
		cfg.PaddingRatio = 0
	}
	if cfg.MaxZoom <= 0 {
		cfg.MaxZoom = def.MaxZoom
	}
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = def.TileSize
	}
	return &Fitter{cfg: cfg}
}

// Config returns the effective settings.
func (f *Fitter) Config() Config {
	return f.cfg
}

// Fit frames points. No points yields FramingNone so the caller keeps its
// current camera.
func (f *Fitter) Fit(points []core.LatLng) core.Framing {
	switch len(points) {
	case 0:
		return core.Framing{Kind: core.FramingNone}
	case 1:
		return f.center(points[0])
	}

	b := boundsOf(points)
	if b.LatSpan() < f.cfg.DegenerateThreshold && b.LngSpan() < f.cfg.DegenerateThreshold {
		return f.center(mean(points))
	}

	return core.Framing{
		Kind:         core.FramingBounds,
		Center:       core.LatLng{Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2, Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2},
		Bounds:       b,
		PaddingRatio: f.cfg.PaddingRatio,
		MaxZoom:      f.maxZoom(),
		Zoom:         f.Zoom(b),
	}
}

// FitMissions frames the first sample of every ready mission with a track.
func (f *Fitter) FitMissions(missions []core.Mission) core.Framing {
	points := make([]core.LatLng, 0, len(missions))
	for _, m := range missions {
		if m.State != core.StateReady {
			continue
		}
		if p, ok := geo.FirstPoint(m.Track); ok {
			points = append(points, p)
		}
	}
	return f.Fit(points)
}

// Zoom returns the largest integer zoom at which b, padded, fits the
// surface, capped at the framing maximum.
func (f *Fitter) Zoom(b core.Bounds) float64 {
	latPad := b.LatSpan() * f.cfg.PaddingRatio
	lngPad := b.LngSpan() * f.cfg.PaddingRatio

	sw := geo.MercatorXY(b.SouthWest.Lat-latPad, b.SouthWest.Lng-lngPad)
	ne := geo.MercatorXY(b.NorthEast.Lat+latPad, b.NorthEast.Lng+lngPad)

	zx := axisZoom(float64(f.cfg.Width), ne.X-sw.X, float64(f.cfg.TileSize))
	zy := axisZoom(float64(f.cfg.Height), ne.Y-sw.Y, float64(f.cfg.TileSize))

	z := math.Floor(math.Min(zx, zy))
	z = math.Min(z, f.maxZoom())
	return math.Max(z, 0)
}

func (f *Fitter) maxZoom() float64 {
	return math.Min(f.cfg.MaxZoom, f.cfg.CloseZoom)
}

func (f *Fitter) center(p core.LatLng) core.Framing {
	return core.Framing{Kind: core.FramingCenter, Center: p, Zoom: f.cfg.CloseZoom}
}

// axisZoom solves pixels*2^-z = meters*tile/circumference for z.
func axisZoom(pixels, meters, tile float64) float64 {
	if meters <= 0 {
		return math.Inf(1)
	}
	return math.Log2(pixels * geo.EarthCircumference / (meters * tile))
}

func boundsOf(points []core.LatLng) core.Bounds {
	b := core.Bounds{SouthWest: points[0], NorthEast: points[0]}
	for _, p := range points[1:] {
		b.SouthWest.Lat = math.Min(b.SouthWest.Lat, p.Lat)
		b.SouthWest.Lng = math.Min(b.SouthWest.Lng, p.Lng)
		b.NorthEast.Lat = math.Max(b.NorthEast.Lat, p.Lat)
		b.NorthEast.Lng = math.Max(b.NorthEast.Lng, p.Lng)
	}
	return b
}

func mean(points []core.LatLng) core.LatLng {
	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return core.LatLng{Lat: lat / n, Lng: lng / n}
}
