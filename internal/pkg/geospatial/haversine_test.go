package geospatial

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	if d := Haversine(45, 7, 45, 7); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}

	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	d := Haversine(0, 0, 1, 0)
	if math.Abs(d-111195) > 1 {
		t.Errorf("expected ~111195m, got %f", d)
	}

	if a, b := Haversine(50, 10, 49, 11), Haversine(49, 11, 50, 10); math.Abs(a-b) > 1e-6 {
		t.Errorf("distance must be symmetric: %f vs %f", a, b)
	}
}

func TestValidLatLon(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.1, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		if got := ValidLatLon(tt.lat, tt.lon); got != tt.want {
			t.Errorf("ValidLatLon(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}
