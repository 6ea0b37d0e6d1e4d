package spatial

import (
	"math"
	"testing"
)

func TestHaversineDistanceZero(t *testing.T) {
	if d := HaversineDistance(48.8566, 2.3522, 48.8566, 2.3522); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestHaversineDistanceOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.2 km on a sphere of radius 6371 km
	d := HaversineDistance(0, 0, 1, 0)
	if math.Abs(d-111195) > 100 {
		t.Fatalf("expected ~111195 m, got %f", d)
	}
}

func TestHaversineDistanceKnownCityPair(t *testing.T) {
	// Paris -> London is roughly 344 km great-circle
	d := HaversineDistance(48.8566, 2.3522, 51.5074, -0.1278)
	if d < 335000 || d > 350000 {
		t.Fatalf("expected ~344 km, got %f m", d)
	}
}

func TestHaversineDistanceSymmetric(t *testing.T) {
	a := HaversineDistance(55.7558, 37.6173, 59.9311, 30.3609)
	b := HaversineDistance(59.9311, 30.3609, 55.7558, 37.6173)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("expected symmetric distance, got %f vs %f", a, b)
	}
}
