package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 12.9257, lng1: 77.5960,
			lat2: 12.9257, lng2: 77.5960,
			wantKm: 0, tolerance: 0.001,
		},
		{
			name: "jayanagar to indiranagar",
			lat1: 12.9257, lng1: 77.5960,
			lat2: 12.9781, lng2: 77.6408,
			wantKm: 7.6, tolerance: 0.5,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lng1: 0,
			lat2: 1, lng2: 0,
			wantKm: 111.19, tolerance: 0.1,
		},
		{
			name: "antipodal points",
			lat1: 0, lng1: 0,
			lat2: 0, lng2: 180,
			wantKm: math.Pi * 6371, tolerance: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Fatalf("DistanceKm = %.3f, want %.3f (±%.3f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestWithinRadius(t *testing.T) {
	// Origin in central Bengaluru; one point ~2km north, one ~10km north.
	originLat, originLng := 12.9700, 77.5900
	nearLat := originLat + 2.0/111.19
	farLat := originLat + 10.0/111.19

	if !WithinRadius(originLat, originLng, nearLat, originLng, 5) {
		t.Fatalf("expected point ~2km away to be within 5km radius")
	}
	if WithinRadius(originLat, originLng, farLat, originLng, 5) {
		t.Fatalf("expected point ~10km away to be outside 5km radius")
	}
	if !WithinRadius(originLat, originLng, farLat, originLng, 10.1) {
		t.Fatalf("expected point ~10km away to be within 10.1km radius")
	}
}
