package geo

import (
	"fmt"

	"github.com/mmcloughlin/geohash"
)

const markerKeyPrecision = 9

// GeoPoint is a latitude/longitude pair used to place a marker.
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Geohash returns a stable key for the point, suitable for keying markers on the
// client.
func (p GeoPoint) Geohash() string {
	return geohash.EncodeWithPrecision(p.Latitude, p.Longitude, markerKeyPrecision)
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.7f, %.7f)", p.Latitude, p.Longitude)
}

// ResolvedLocation is the outcome of a successful address lookup.
type ResolvedLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Point drops the address.
func (l ResolvedLocation) Point() GeoPoint {
	return GeoPoint{Latitude: l.Latitude, Longitude: l.Longitude}
}

var (
	// DefaultPoint is where both markers start: Surabaya.
	DefaultPoint = GeoPoint{Latitude: -7.2574719, Longitude: 112.7520883}

	// DefaultLocation seeds the shared display before any search.
	DefaultLocation = ResolvedLocation{
		Latitude:  DefaultPoint.Latitude,
		Longitude: DefaultPoint.Longitude,
		Address:   "Surabaya, East Java, Indonesia",
	}
)
