package geo

import (
	"math"
	"testing"
)

func TestDistanceMetersKnownPair(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	a := Coordinate{Lat: -6.2, Lng: 106.816}
	b := Coordinate{Lat: -6.9175, Lng: 107.6191}
	d := DistanceMeters(a, b)
	if d < 100000 || d > 140000 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestDistanceMetersIdentity(t *testing.T) {
	p := Coordinate{Lat: 39.9812, Lng: -75.1556}
	if d := DistanceMeters(p, p); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	a := Coordinate{Lat: -6.2, Lng: 106.816}
	b := Coordinate{Lat: -6.9175, Lng: 107.6191}
	if math.Abs(DistanceMeters(a, b)-DistanceMeters(b, a)) > 1e-9 {
		t.Fatalf("expected symmetric distance")
	}
}

func TestDistanceMetersShortRange(t *testing.T) {
	// Two points ~111m apart along a meridian (0.001 deg latitude).
	a := Coordinate{Lat: 39.9812, Lng: -75.1556}
	b := Coordinate{Lat: 39.9822, Lng: -75.1556}
	d := DistanceMeters(a, b)
	if d < 100 || d > 125 {
		t.Fatalf("unexpected short-range distance: %v", d)
	}
}

func TestMetersToFeet(t *testing.T) {
	if ft := MetersToFeet(100); math.Abs(ft-328.084) > 0.001 {
		t.Fatalf("unexpected conversion: %v", ft)
	}
}
