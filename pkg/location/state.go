package location

import (
	"sync"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

// Status is the search state of one side.
type Status int

const (
	Idle Status = iota
	Searching
	Resolved
	Failed
)

func (s Status) String() string {
	switch s {
	case Searching:
		return "searching"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type slot struct {
	mu     sync.RWMutex
	point  geo.GeoPoint
	status Status
	err    string
}

// State holds both sides plus the shared "last resolved" display.
type State struct {
	sides [2]*slot

	displayMu sync.RWMutex
	display   geo.ResolvedLocation
	lastSide  geo.Side
	hasLast   bool
}

// NewState seeds both markers and the display with initial.
func NewState(initial geo.ResolvedLocation) *State {
	s := &State{display: initial}
	for i := range s.sides {
		s.sides[i] = &slot{point: initial.Point()}
	}
	return s
}

// NewDefaultState starts at the default city.
func NewDefaultState() *State {
	return NewState(geo.DefaultLocation)
}

func (s *State) sideSlot(side geo.Side) *slot {
	if side == geo.Destination {
		return s.sides[geo.Destination]
	}
	return s.sides[geo.Pickup]
}

// Point returns the side's marker position.
func (s *State) Point(side geo.Side) geo.GeoPoint {
	sl := s.sideSlot(side)
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.point
}

// Status returns the side's search state.
func (s *State) Status(side geo.Side) Status {
	sl := s.sideSlot(side)
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.status
}

// Error returns the side's inline error message, empty when there is none.
func (s *State) Error(side geo.Side) string {
	sl := s.sideSlot(side)
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.err
}

// Display returns the most recently resolved location, whichever side it was.
func (s *State) Display() geo.ResolvedLocation {
	s.displayMu.RLock()
	defer s.displayMu.RUnlock()
	return s.display
}

// LastSide reports which side last updated the display.
func (s *State) LastSide() (geo.Side, bool) {
	s.displayMu.RLock()
	defer s.displayMu.RUnlock()
	return s.lastSide, s.hasLast
}

// begin clears any previous error and marks the side as searching.
func (s *State) begin(side geo.Side) {
	sl := s.sideSlot(side)
	sl.mu.Lock()
	sl.err = ""
	sl.status = Searching
	sl.mu.Unlock()
}

func (s *State) resolve(side geo.Side, loc geo.ResolvedLocation) {
	sl := s.sideSlot(side)
	sl.mu.Lock()
	sl.point = loc.Point()
	sl.status = Resolved
	sl.err = ""
	sl.mu.Unlock()

	s.displayMu.Lock()
	s.display = loc
	s.lastSide = side
	s.hasLast = true
	s.displayMu.Unlock()
}

func (s *State) fail(side geo.Side, message string) {
	sl := s.sideSlot(side)
	sl.mu.Lock()
	sl.status = Failed
	sl.err = message
	sl.mu.Unlock()
}

// SideSnapshot is a copy of one side.
type SideSnapshot struct {
	Side   geo.Side     `json:"side"`
	Point  geo.GeoPoint `json:"point"`
	Status Status       `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// Snapshot is a copy of the whole state.
type Snapshot struct {
	Pickup      SideSnapshot         `json:"pickup"`
	Destination SideSnapshot         `json:"destination"`
	Display     geo.ResolvedLocation `json:"display"`
}

// Side returns the snapshot for one side.
func (s Snapshot) Side(side geo.Side) SideSnapshot {
	if side == geo.Destination {
		return s.Destination
	}
	return s.Pickup
}

// Snapshot copies the state. Sides are read one at a time, so the copy is not
// an atomic view across both.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Pickup:      s.sideSnapshot(geo.Pickup),
		Destination: s.sideSnapshot(geo.Destination),
		Display:     s.Display(),
	}
}

func (s *State) sideSnapshot(side geo.Side) SideSnapshot {
	sl := s.sideSlot(side)
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return SideSnapshot{Side: side, Point: sl.point, Status: sl.status, Error: sl.err}
}
