package core

// Marker is one map pin for a ready mission.
type Marker struct {
	MissionID string  `json:"missionId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Color     string  `json:"color"`
	Name      string  `json:"name,omitempty"`
}

// PolylinePoint is one vertex of the selected track. Alt is meters, nil when
// the mission has no altitude series.
type PolylinePoint struct {
	Lat float64  `json:"lat"`
	Lng float64  `json:"lng"`
	Alt *float64 `json:"alt,omitempty"`
}

// HoverPosition is the highlighted sample shared by chart and map.
type HoverPosition struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Index int     `json:"index"`
}

// ChartSample is what the altitude chart reports when the pointer moves.
// Timestamp is the boot-relative time of the sample in milliseconds.
type ChartSample struct {
	Timestamp uint32  `json:"timestamp"`
	Value     float64 `json:"value"`
	Index     int     `json:"index"`
}

// ChartPoint is one x/y pair of the altitude series. Index is the track
// index the point was built from.
type ChartPoint struct {
	Index     int     `json:"index"`
	Timestamp uint32  `json:"timestamp"`
	Seconds   float64 `json:"seconds"`
	AltitudeM float64 `json:"altitudeM"`
}
