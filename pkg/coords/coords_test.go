package coords

import (
	"math"
	"testing"
)

func TestScale(t *testing.T) {
	tests := []struct {
		dpi  int
		want float64
	}{
		{72, 1},
		{144, 0.5},
		{300, 72.0 / 300},
		{0, 1},
		{-10, 1},
	}
	for _, tt := range tests {
		if got := Scale(tt.dpi); got != tt.want {
			t.Errorf("Scale(%d) = %g, want %g", tt.dpi, got, tt.want)
		}
	}
}

func TestMapBoxRoundTrip(t *testing.T) {
	boxes := []Box{
		{Left: 0, Top: 0, Width: 100, Height: 20},
		{Left: 123.5, Top: 456.25, Width: 7.75, Height: 11.5},
		{Left: 2480, Top: 3508, Width: 1, Height: 1},
	}
	dpis := []int{72, 150, 220, 300, 360}

	for _, dpi := range dpis {
		for _, b := range boxes {
			got := UnmapBox(MapBox(b, dpi), dpi)
			if !boxesClose(got, b, 1e-9) {
				t.Errorf("round trip at %d dpi: got %+v, want %+v", dpi, got, b)
			}
		}
	}
}

func TestMapBoxValues(t *testing.T) {
	// 300 px at 300 dpi is one inch, 72 points.
	got := MapBox(Box{Left: 300, Top: 600, Width: 300, Height: 150}, 300)
	want := Box{Left: 72, Top: 144, Width: 72, Height: 36}
	if !boxesClose(got, want, 1e-9) {
		t.Errorf("MapBox = %+v, want %+v", got, want)
	}
}

func TestEstimateFontSize(t *testing.T) {
	tests := []struct {
		height float64
		want   float64
	}{
		{10, 8},
		{20, 16},
		{5, 4},   // floor
		{0, 4},   // floor
		{4.9, 4}, // 3.92 clamped up
	}
	for _, tt := range tests {
		if got := EstimateFontSize(tt.height); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EstimateFontSize(%g) = %g, want %g", tt.height, got, tt.want)
		}
	}
}

func boxesClose(a, b Box, eps float64) bool {
	return math.Abs(a.Left-b.Left) < eps &&
		math.Abs(a.Top-b.Top) < eps &&
		math.Abs(a.Width-b.Width) < eps &&
		math.Abs(a.Height-b.Height) < eps
}
