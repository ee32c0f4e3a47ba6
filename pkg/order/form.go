package order

import (
	"sync"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

// AddressSource records who last wrote an address field.
type AddressSource int

const (
	SourceNone AddressSource = iota
	SourceUser
	SourceResolver
)

func (s AddressSource) String() string {
	switch s {
	case SourceUser:
		return "user"
	case SourceResolver:
		return "resolver"
	default:
		return "none"
	}
}

type addressTrack struct {
	source   AddressSource
	resolved string
	hasValue bool
}

// Form holds one draft shared by user input and the location resolver. It is
// safe for concurrent use.
type Form struct {
	mu     sync.RWMutex
	draft  Draft
	tracks [2]addressTrack
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Draft returns a snapshot of the current values.
func (f *Form) Draft() Draft {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.draft
}

// Set applies a user write to a field.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, err := f.draft.With(field, value)
	if err != nil {
		return err
	}
	f.draft = next
	if side, ok := addressSide(field); ok {
		f.tracks[side].source = SourceUser
	}
	return nil
}

// SetValues applies user writes for every known key in values. Unknown keys are
// ignored so whole form posts can be passed through.
func (f *Form) SetValues(values map[string]string) {
	for _, name := range Fields {
		value, ok := values[name]
		if !ok {
			continue
		}
		_ = f.Set(name, value)
	}
}

// SetAddress overwrites a side's address with the resolver's canonical text.
// Whatever the user typed before is replaced, not merged.
func (f *Form) SetAddress(side geo.Side, address string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, err := f.draft.With(side.Field(), address)
	if err != nil {
		return
	}
	f.draft = next
	f.tracks[side] = addressTrack{
		source:   SourceResolver,
		resolved: address,
		hasValue: true,
	}
}

// Source reports who last wrote the side's address field.
func (f *Form) Source(side geo.Side) AddressSource {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tracks[side].source
}

// Diverged reports whether the address text no longer matches the last
// resolved address for that side. A side that was never resolved cannot
// diverge.
func (f *Form) Diverged(side geo.Side) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	track := f.tracks[side]
	if !track.hasValue {
		return false
	}
	return Sanitize(f.draft.Address(side)) != Sanitize(track.resolved)
}

// Reset clears the draft and the address tracking.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = Draft{}
	f.tracks = [2]addressTrack{}
}

// ResetIfUnchanged clears the form only when its draft still equals seen.
// It reports whether the reset happened.
func (f *Form) ResetIfUnchanged(seen Draft) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft != seen {
		return false
	}
	f.draft = Draft{}
	f.tracks = [2]addressTrack{}
	return true
}

func addressSide(field string) (geo.Side, bool) {
	switch field {
	case FieldPickup:
		return geo.Pickup, true
	case FieldDestination:
		return geo.Destination, true
	default:
		return 0, false
	}
}
