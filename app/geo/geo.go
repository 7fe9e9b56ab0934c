package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64
	Lon float64
}

func (l Location) String() string {
	return fmt.Sprintf("%.4f,%.4f", l.Lat, l.Lon)
}

// Valid reports whether the coordinates are within their legal ranges.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// Distance returns the great-circle distance between two locations in
// kilometers, using the haversine formula.
func Distance(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Bucket snaps a location onto a coarse grid with the given cell size in
// degrees, so nearby locations collapse onto the same cell.
func Bucket(l Location, precision float64) Location {
	if precision <= 0 {
		return l
	}
	return Location{
		Lat: math.Round(l.Lat/precision) * precision,
		Lon: math.Round(l.Lon/precision) * precision,
	}
}
