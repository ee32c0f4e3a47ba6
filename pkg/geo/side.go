package geo

import (
	"fmt"
	"strings"
)

// Side is one of the two independent halves of the location search workflow.
type Side int

const (
	Pickup Side = iota
	Destination
)

// Sides lists every side in display order.
var Sides = []Side{Pickup, Destination}

// ParseSide accepts "pickup" or "destination", ignoring case and surrounding space.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pickup":
		return Pickup, nil
	case "destination":
		return Destination, nil
	default:
		return 0, fmt.Errorf("geo: unknown side %q", raw)
	}
}

func (s Side) String() string {
	switch s {
	case Pickup:
		return "pickup"
	case Destination:
		return "destination"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Field is the order form field this side writes resolved addresses into.
func (s Side) Field() string {
	return s.String()
}

// Label is the capitalised name used in user facing messages.
func (s Side) Label() string {
	switch s {
	case Pickup:
		return "Pickup"
	case Destination:
		return "Destination"
	default:
		return s.String()
	}
}

// Valid reports whether s is one of the known sides.
func (s Side) Valid() bool {
	return s == Pickup || s == Destination
}

func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("geo: invalid side %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	parsed, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
