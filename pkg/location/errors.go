package location

import (
	"errors"
	"fmt"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
)

// MessageFailure is shown for every failure other than "not found".
const MessageFailure = "An unexpected error occurred. Please try again."

// Message keys for localisation.
const (
	KeyNotFound = "location.not_found"
	KeyFailure  = "location.failure"
)

// ErrInvalidSide is returned for a side outside pickup/destination.
var ErrInvalidSide = errors.New("location: invalid side")

// NotFoundMessage is the inline message for a side whose query had no match.
func NotFoundMessage(side geo.Side) string {
	return fmt.Sprintf("%s location not found, please try again.", side.Label())
}

// ResolveError is a side-scoped resolution failure. Message is what the user sees.
type ResolveError struct {
	Side    geo.Side
	Kind    geocode.Kind
	Message string
	Err     error
}

func (e *ResolveError) Error() string {
	if e == nil {
		return "location: <nil>"
	}
	return fmt.Sprintf("location: %s %s: %v", e.Side, e.Kind, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// MessageKey returns the localisation key for the error's message.
func (e *ResolveError) MessageKey() string {
	if e != nil && e.Kind == geocode.KindNotFound {
		return KeyNotFound
	}
	return KeyFailure
}

func newResolveError(side geo.Side, err error) *ResolveError {
	if geocode.IsNotFound(err) {
		return &ResolveError{Side: side, Kind: geocode.KindNotFound, Message: NotFoundMessage(side), Err: err}
	}
	return &ResolveError{Side: side, Kind: geocode.KindFailure, Message: MessageFailure, Err: err}
}
