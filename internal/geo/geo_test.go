package geo

import (
	"errors"
	"math"
	"testing"
)

func TestMercatorXY_Origin(t *testing.T) {
	xy := MercatorXY(0, 0)
	if math.Abs(xy.X) > 1e-6 {
		t.Errorf("expected X=0 at origin, got %f", xy.X)
	}
	if math.Abs(xy.Y) > 1e-6 {
		t.Errorf("expected Y=0 at origin, got %f", xy.Y)
	}
}

func TestMercatorXY_Antimeridian(t *testing.T) {
	xy := MercatorXY(0, 180)
	if math.Abs(xy.X-EarthCircumference/2) > 1 {
		t.Errorf("expected X=%f at 180E, got %f", EarthCircumference/2, xy.X)
	}
}

func TestMercatorXY_Hemispheres(t *testing.T) {
	ne := MercatorXY(10, 10)
	if ne.X <= 0 || ne.Y <= 0 {
		t.Errorf("expected positive X/Y for NE hemisphere, got %f,%f", ne.X, ne.Y)
	}

	sw := MercatorXY(-30, -45)
	if sw.X >= 0 || sw.Y >= 0 {
		t.Errorf("expected negative X/Y for SW hemisphere, got %f,%f", sw.X, sw.Y)
	}
}

func TestMercatorXY_ClampsPoles(t *testing.T) {
	pole := MercatorXY(90, 0)
	limit := MercatorXY(MaxMercatorLat, 0)
	if math.IsInf(pole.Y, 0) || math.IsNaN(pole.Y) {
		t.Fatalf("expected finite Y at the pole, got %f", pole.Y)
	}
	if pole.Y != limit.Y {
		t.Errorf("expected pole to clamp to %f, got %f", limit.Y, pole.Y)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(40.4, -3.7); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, c := range [][2]float64{{91, 0}, {0, 181}, {-90.1, 0}, {math.NaN(), 0}} {
		if err := Validate(c[0], c[1]); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("Validate(%v, %v): expected ErrInvalidCoordinates, got %v", c[0], c[1], err)
		}
	}
}
