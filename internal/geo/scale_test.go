package geo

import (
	"testing"

	"github.com/skytrace/missionmap/pkg/core"
)

func TestScaleDegrees(t *testing.T) {
	tests := []struct {
		raw  int32
		want float64
	}{
		{0, 0},
		{400000000, 40},
		{-37000000, -3.7},
		{1, 1e-7},
		{-1800000000, -180},
		{1800000000, 180},
		{123456789, 12.3456789},
	}

	for _, tt := range tests {
		got := ScaleDegrees(tt.raw)
		if got != float64(tt.raw)/1e7 {
			t.Errorf("ScaleDegrees(%d) = %v, want raw/1e7", tt.raw, got)
		}
		if diff := got - tt.want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("ScaleDegrees(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestScaleAltitude(t *testing.T) {
	tests := []struct {
		raw  int32
		want float64
	}{
		{0, 0},
		{12345, 123.45},
		{-250, -2.5},
		{100, 1},
	}

	for _, tt := range tests {
		got := ScaleAltitude(tt.raw)
		if got != float64(tt.raw)/100 {
			t.Errorf("ScaleAltitude(%d) = %v, want raw/100", tt.raw, got)
		}
		if diff := got - tt.want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("ScaleAltitude(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestScaledPoint(t *testing.T) {
	track, _ := core.NewTrackRecord(
		[]int32{400000000, 400100000},
		[]int32{-37000000, -37100000},
		nil, nil,
	)

	p := ScaledPoint(track, 1)
	if p.Lat != 40.01 {
		t.Errorf("expected lat=40.01, got %v", p.Lat)
	}
	if p.Lng != -3.71 {
		t.Errorf("expected lng=-3.71, got %v", p.Lng)
	}
}

func TestFirstPoint_Empty(t *testing.T) {
	if _, ok := FirstPoint(core.TrackRecord{}); ok {
		t.Error("expected no first point for an empty track")
	}
}
