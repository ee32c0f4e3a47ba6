package geocode

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the provider has no candidate for a query.
var ErrNotFound = errors.New("geocode: location not found")

// Kind classifies lookup failures.
type Kind string

const (
	KindNotFound Kind = "not_found"
	KindFailure  Kind = "failure"
)

// Error wraps a failed lookup.
type Error struct {
	Kind   Kind
	Query  string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "geocode: <nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("geocode: %s for %q (http %d): %v", e.Kind, e.Query, e.Status, e.Err)
	}
	return fmt.Sprintf("geocode: %s for %q: %v", e.Kind, e.Query, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the provider returned no candidates.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
