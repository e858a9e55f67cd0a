// pkg/core/mission.go
package core

import "time"

// MissionState is the lifecycle state of an ingested mission.
type MissionState string

const (
	StateLoading MissionState = "loading"
	StateReady   MissionState = "ready"
	StateFailed  MissionState = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s MissionState) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// Mission is one ingested flight-log file and its assembled track.
// Values handed out by the registry are copies; the Track slices are shared
// and must be treated as read-only.
type Mission struct {
	ID            string       `json:"id"`
	FileName      string       `json:"fileName"`
	Color         string       `json:"color"`
	State         MissionState `json:"state"`
	Label         string       `json:"label,omitempty"`
	FailureReason string       `json:"failureReason,omitempty"`
	Track         TrackRecord  `json:"track"`
	SubmittedAt   time.Time    `json:"submittedAt"`
	Seq           uint64       `json:"seq"`
}

// LatLng is a floating-point geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is an axis-aligned rectangle in degrees.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// LatSpan returns the latitude extent of b in degrees.
func (b Bounds) LatSpan() float64 {
	return b.NorthEast.Lat - b.SouthWest.Lat
}

// LngSpan returns the longitude extent of b in degrees.
func (b Bounds) LngSpan() float64 {
	return b.NorthEast.Lng - b.SouthWest.Lng
}

// FramingKind tells the map which camera operation a Framing describes.
type FramingKind string

const (
	FramingNone   FramingKind = "none"
	FramingCenter FramingKind = "center"
	FramingBounds FramingKind = "bounds"
)

// Framing is a derived map camera. For FramingCenter, Center and Zoom are
// set. For FramingBounds, Bounds, PaddingRatio and MaxZoom are set and Zoom
// holds the resolved level after padding and capping.
type Framing struct {
	Kind         FramingKind `json:"kind"`
	Center       LatLng      `json:"center"`
	Zoom         float64     `json:"zoom"`
	Bounds       Bounds      `json:"bounds"`
	PaddingRatio float64     `json:"paddingRatio,omitempty"`
	MaxZoom      float64     `json:"maxZoom,omitempty"`
}
