package geo

import (
	"math"
	"testing"
)

func TestDistance_KnownPair(t *testing.T) {
	paloAlto := Location{Lat: 37.4419, Lon: -122.1430}
	sanFrancisco := Location{Lat: 37.7749, Lon: -122.4194}

	distance := Distance(paloAlto, sanFrancisco)

	// Roughly 44 km apart
	if distance < 40 || distance > 50 {
		t.Errorf("Expected distance around 44 km, got %.2f", distance)
	}
}

func TestDistance_SamePoint(t *testing.T) {
	point := Location{Lat: 51.5074, Lon: -0.1278}

	if d := Distance(point, point); d != 0 {
		t.Errorf("Expected zero distance for identical points, got %f", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Location{Lat: 35.6762, Lon: 139.6503}
	b := Location{Lat: 48.8566, Lon: 2.3522}

	forward := Distance(a, b)
	backward := Distance(b, a)

	if math.Abs(forward-backward) > 1e-9 {
		t.Errorf("Distance is not symmetric: %f vs %f", forward, backward)
	}
}

func TestBucket_GroupsNearbyLocations(t *testing.T) {
	a := Location{Lat: 37.44, Lon: -122.14}
	b := Location{Lat: 37.48, Lon: -122.18}

	if Bucket(a, 0.5) != Bucket(b, 0.5) {
		t.Errorf("Expected nearby locations to share a bucket: %v vs %v",
			Bucket(a, 0.5), Bucket(b, 0.5))
	}
}

func TestBucket_SeparatesDistantLocations(t *testing.T) {
	a := Location{Lat: 37.44, Lon: -122.14}
	b := Location{Lat: 40.71, Lon: -74.00}

	if Bucket(a, 0.5) == Bucket(b, 0.5) {
		t.Error("Expected distant locations to land in different buckets")
	}
}

func TestBucket_ZeroPrecisionIsIdentity(t *testing.T) {
	a := Location{Lat: 37.4419, Lon: -122.1430}

	if Bucket(a, 0) != a {
		t.Errorf("Expected identity bucket for zero precision, got %v", Bucket(a, 0))
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name     string
		location Location
		want     bool
	}{
		{"valid", Location{Lat: 37.44, Lon: -122.14}, true},
		{"lat too high", Location{Lat: 90.1, Lon: 0}, false},
		{"lat too low", Location{Lat: -90.1, Lon: 0}, false},
		{"lon too high", Location{Lat: 0, Lon: 180.1}, false},
		{"lon too low", Location{Lat: 0, Lon: -180.1}, false},
		{"boundary", Location{Lat: 90, Lon: -180}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.location.Valid(); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.location, got, tt.want)
			}
		})
	}
}
