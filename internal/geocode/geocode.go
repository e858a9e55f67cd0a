// Package geocode resolves coordinates to short place labels.
package geocode

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoResult is returned when a lookup produced no usable label.
var ErrNoResult = errors.New("no geocoding result")

// Lookup resolves a coordinate to a human readable label.
type Lookup interface {
	Label(ctx context.Context, lat, lng float64) (string, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, lat, lng float64) (string, error)

// Label implements Lookup.
func (f LookupFunc) Label(ctx context.Context, lat, lng float64) (string, error) {
	return f(ctx, lat, lng)
}

// CoordinateLabel is the label used when no place name is available.
func CoordinateLabel(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}

// LabelOrFallback returns the looked-up label, or the coordinate label
// together with the lookup error. The label is never empty.
func LabelOrFallback(ctx context.Context, l Lookup, lat, lng float64) (string, error) {
	if l == nil {
		return CoordinateLabel(lat, lng), ErrNoResult
	}
	label, err := l.Label(ctx, lat, lng)
	if err == nil && label == "" {
		err = ErrNoResult
	}
	if err != nil {
		return CoordinateLabel(lat, lng), err
	}
	return label, nil
}

// Resolve never fails: any lookup error yields the coordinate label.
func Resolve(ctx context.Context, l Lookup, lat, lng float64) string {
	label, _ := LabelOrFallback(ctx, l, lat, lng)
	return label
}

// cacheKey rounds to roughly 11 m, well below what a label distinguishes.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lng)
}
