package core

// TrackRecord holds index-aligned, fixed-point telemetry series of a mission.
// Lat and Lng are degrees x 1e7, Alt is centimeters, TimeBootMs is
// milliseconds since device boot. Build it with NewTrackRecord.
type TrackRecord struct {
	Lat        []int32  `json:"lat"`
	Lng        []int32  `json:"lng"`
	Alt        []int32  `json:"alt,omitempty"`
	TimeBootMs []uint32 `json:"time_boot_ms,omitempty"`
}

// TrackIssues describes what NewTrackRecord had to repair.
type TrackIssues uint8

const (
	// IssuePositionTruncated means Lat and Lng had different lengths.
	IssuePositionTruncated TrackIssues = 1 << iota
	// IssueAltitudeTruncated means Alt was longer than the position series.
	IssueAltitudeTruncated
	// IssueAltitudeDropped means Alt was shorter than the position series.
	IssueAltitudeDropped
	// IssueTimeTruncated means TimeBootMs was longer than the position series.
	IssueTimeTruncated
	// IssueTimeDropped means TimeBootMs was shorter than the position series.
	IssueTimeDropped
	// IssueTimeNotMonotonic means TimeBootMs decreased somewhere.
	IssueTimeNotMonotonic
)

// Has reports whether flag is set.
func (i TrackIssues) Has(flag TrackIssues) bool {
	return i&flag != 0
}

// NewTrackRecord validates index alignment and returns the record with the
// repairs it applied. Position series are cut to the shorter of the two.
// Optional series are cut when longer and removed when shorter, so every
// series present in the result has exactly Len() samples. A timestamp series
// that is not non-decreasing is removed.
func NewTrackRecord(lat, lng, alt []int32, timeBootMs []uint32) (TrackRecord, TrackIssues) {
	var issues TrackIssues

	n := min(len(lat), len(lng))
	if len(lat) != len(lng) {
		issues |= IssuePositionTruncated
	}

	t := TrackRecord{
		Lat: lat[:n:n],
		Lng: lng[:n:n],
	}

	switch {
	case alt == nil:
	case len(alt) > n:
		t.Alt = alt[:n:n]
		issues |= IssueAltitudeTruncated
	case len(alt) < n:
		issues |= IssueAltitudeDropped
	default:
		t.Alt = alt
	}

	switch {
	case timeBootMs == nil:
	case len(timeBootMs) > n:
		t.TimeBootMs = timeBootMs[:n:n]
		issues |= IssueTimeTruncated
	case len(timeBootMs) < n:
		issues |= IssueTimeDropped
	default:
		t.TimeBootMs = timeBootMs
	}

	for i := 1; i < len(t.TimeBootMs); i++ {
		if t.TimeBootMs[i] < t.TimeBootMs[i-1] {
			t.TimeBootMs = nil
			issues |= IssueTimeNotMonotonic
			break
		}
	}

	if n == 0 {
		t.Alt, t.TimeBootMs = nil, nil
	}
	return t, issues
}

// Len returns the number of position samples.
func (t TrackRecord) Len() int {
	return len(t.Lat)
}

// Empty reports whether the record has no position samples.
func (t TrackRecord) Empty() bool {
	return len(t.Lat) == 0
}

// HasTimestamps reports whether every sample carries a boot timestamp.
func (t TrackRecord) HasTimestamps() bool {
	return len(t.TimeBootMs) > 0 && len(t.TimeBootMs) == len(t.Lat)
}

// HasAltitude reports whether the altitude chart is available, which needs
// both altitude and timestamps.
func (t TrackRecord) HasAltitude() bool {
	return len(t.Alt) > 0 && len(t.Alt) == len(t.Lat) && t.HasTimestamps()
}
