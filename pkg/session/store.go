package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
	"github.com/dynamits/go-delivery-order/pkg/location"
	"github.com/dynamits/go-delivery-order/pkg/mapview"
	"github.com/dynamits/go-delivery-order/pkg/order"
)

// Options configures a Store.
type Options struct {
	Geocoder geocode.Geocoder
	Initial  geo.ResolvedLocation
	MapID    string
	Logger   *slog.Logger
	Now      func() time.Time
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// DefaultOptions starts every session at the default city.
func DefaultOptions() Options {
	return Options{
		Initial: geo.DefaultLocation,
		MapID:   mapview.DefaultMapID,
		Logger:  slog.Default(),
		Now:     time.Now,
	}
}

// WithInitialLocation overrides where markers and the display start.
func WithInitialLocation(loc geo.ResolvedLocation) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Initial = loc
	}
}

// WithMapID sets the map id used in every view.
func WithMapID(id string) OptionFn {
	return func(o *Options) {
		if o == nil || id == "" {
			return
		}
		o.MapID = id
	}
}

// WithLogger sets the logger handed to each session.
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil || logger == nil {
			return
		}
		o.Logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) OptionFn {
	return func(o *Options) {
		if o == nil || now == nil {
			return
		}
		o.Now = now
	}
}

// Store holds sessions by id.
type Store struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore builds a store whose sessions resolve through g.
func NewStore(g geocode.Geocoder, fns ...OptionFn) *Store {
	opts := DefaultOptions()
	opts.Geocoder = g
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	return &Store{opts: opts, sessions: make(map[string]*Session)}
}

// Create starts a fresh session with a new id.
func (s *Store) Create() *Session {
	id := uuid.NewString()
	logger := s.opts.Logger.With(slog.String("session_id", id))

	state := location.NewState(s.opts.Initial)
	form := order.NewForm()
	view := mapview.NewPublisher(state,
		mapview.WithCenter(s.opts.Initial.Point()),
		mapview.WithMapID(s.opts.MapID),
	)
	resolver := location.NewResolver(s.opts.Geocoder, state,
		location.WithAddressWriter(form),
		location.WithRecenterer(view),
		location.WithLogger(logger),
	)

	sess := &Session{
		ID:        id,
		Form:      form,
		Locations: state,
		Resolver:  resolver,
		View:      view,
		logger:    logger,
		lastSeen:  s.opts.Now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for id and marks it as seen.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	sess.touch(s.opts.Now())
	return sess, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// created reports which happened.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if existing, err := s.Get(id); err == nil {
			return existing, false
		}
	}
	return s.Create(), true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than idle and returns how many went.
// A session with an open view stream counts as seen.
func (s *Store) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := s.opts.Now().Add(-idle)

	s.mu.Lock()
	var removed int
	for id, sess := range s.sessions {
		if sess.View.Subscribers() > 0 {
			sess.touch(s.opts.Now())
			continue
		}
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.opts.Logger.LogAttrs(ctx, slog.LevelInfo, "idle sessions evicted",
			slog.String("action", "session_swept"),
			slog.Int("removed", removed),
			slog.Int("remaining", s.Len()),
		)
	}
	return removed
}
