// Package session keeps one order workspace per browser session in memory.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/location"
	"github.com/dynamits/go-delivery-order/pkg/mapview"
	"github.com/dynamits/go-delivery-order/pkg/order"
)

// CookieName carries the session id.
const CookieName = "delivery_session"

// ErrNotFound is returned for an unknown or evicted session id.
var ErrNotFound = errors.New("session: not found")

// Session is one user's form, location state and map view.
type Session struct {
	ID        string
	Form      *order.Form
	Locations *location.State
	Resolver  *location.Resolver
	View      *mapview.Publisher

	logger *slog.Logger

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen reports when the session was last looked up.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Resolve runs a search for side in this session.
func (s *Session) Resolve(ctx context.Context, query string, side geo.Side) (geo.ResolvedLocation, error) {
	return s.Resolver.Resolve(ctx, query, side)
}

// Submit validates the form and writes the order to sink with the session's
// current marker positions.
func (s *Session) Submit(ctx context.Context, sink order.Sink) (order.Submission, error) {
	submitter := order.NewSubmitter(sink, s.logger)
	return submitter.Submit(ctx, s.Form,
		s.Locations.Point(geo.Pickup),
		s.Locations.Point(geo.Destination),
	)
}
