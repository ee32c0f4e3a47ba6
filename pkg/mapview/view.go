package mapview

import (
	"github.com/dynamits/go-delivery-order/pkg/geo"
)

const (
	DefaultZoom  = 13
	DefaultMapID = "bd607af67d5b8861"

	ColorPickup      = "#FF0000"
	ColorDestination = "#0000FF"
	ColorGlyph       = "#FFFFFF"
)

// Marker is one labelled pin. Key is the position's geohash and stays stable
// while the marker does not move.
type Marker struct {
	Label      string       `json:"label"`
	Side       geo.Side     `json:"side"`
	Position   geo.GeoPoint `json:"position"`
	Background string       `json:"background"`
	Glyph      string       `json:"glyph"`
	Key        string       `json:"key"`
}

// View is one frame of the map widget.
type View struct {
	Center  geo.GeoPoint `json:"center"`
	Zoom    int          `json:"zoom"`
	MapID   string       `json:"mapId"`
	Markers []Marker     `json:"markers"`
}

// Build composes a view. It only reads its arguments.
func Build(center, pickup, destination geo.GeoPoint, mapID string) View {
	if mapID == "" {
		mapID = DefaultMapID
	}
	return View{
		Center: center,
		Zoom:   DefaultZoom,
		MapID:  mapID,
		Markers: []Marker{
			newMarker(geo.Pickup, pickup),
			newMarker(geo.Destination, destination),
		},
	}
}

func newMarker(side geo.Side, p geo.GeoPoint) Marker {
	m := Marker{
		Label:      "A",
		Side:       side,
		Position:   p,
		Background: ColorPickup,
		Glyph:      ColorGlyph,
		Key:        p.Geohash(),
	}
	if side == geo.Destination {
		m.Label = "B"
		m.Background = ColorDestination
	}
	return m
}

// Marker returns the marker for side.
func (v View) Marker(side geo.Side) (Marker, bool) {
	for _, m := range v.Markers {
		if m.Side == side {
			return m, true
		}
	}
	return Marker{}, false
}
