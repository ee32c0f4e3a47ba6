package location

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
)

// AddressWriter receives the canonical address for a side. The order form
// implements it.
type AddressWriter interface {
	SetAddress(side geo.Side, address string)
}

// Recenterer moves the map view to a freshly resolved point.
type Recenterer interface {
	Recenter(ctx context.Context, point geo.GeoPoint)
}

// Resolver runs searches for both sides against one State.
type Resolver struct {
	geocoder geocode.Geocoder
	state    *State
	form     AddressWriter
	view     Recenterer
	logger   *slog.Logger
	tracer   trace.Tracer

	// apply serialises writing one side's result to state, form and view.
	apply [2]sync.Mutex
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAddressWriter sets where resolved addresses are written back.
func WithAddressWriter(w AddressWriter) Option {
	return func(r *Resolver) {
		r.form = w
	}
}

// WithRecenterer sets the map view notified on success.
func WithRecenterer(v Recenterer) Option {
	return func(r *Resolver) {
		r.view = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracerProvider sets where resolution spans go. The global provider is
// used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Resolver) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

const tracerName = "github.com/dynamits/go-delivery-order/pkg/location"

// NewResolver builds a resolver over state. A nil state starts at the default city.
func NewResolver(g geocode.Geocoder, state *State, opts ...Option) *Resolver {
	if state == nil {
		state = NewDefaultState()
	}
	r := &Resolver{
		geocoder: g,
		state:    state,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// State exposes the state the resolver writes to.
func (r *Resolver) State() *State {
	return r.state
}

// Resolve looks up query for side. The side's previous error is cleared before
// the lookup starts. On success the side's marker, the shared display, the form
// field and the map center are updated; on failure only the side's error and
// status change and a *ResolveError is returned.
//
// Concurrent calls for the same side are not ordered: each response applies
// its result when it arrives, and a response's marker, address and recenter
// land together so the last one applied wins on every surface.
func (r *Resolver) Resolve(ctx context.Context, query string, side geo.Side) (geo.ResolvedLocation, error) {
	if !side.Valid() {
		return geo.ResolvedLocation{}, ErrInvalidSide
	}

	ctx, span := r.tracer.Start(ctx, "location.Resolve",
		trace.WithAttributes(attribute.String("delivery.side", side.String())))
	defer span.End()

	r.state.begin(side)

	loc, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		rerr := newResolveError(side, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(rerr.Kind))
		r.apply[side].Lock()
		r.state.fail(side, rerr.Message)
		r.apply[side].Unlock()
		r.logger.LogAttrs(ctx, slog.LevelWarn, "location lookup failed",
			slog.String("action", "location_failed"),
			slog.String("side", side.String()),
			slog.String("kind", string(rerr.Kind)),
			slog.String("error", err.Error()),
		)
		return geo.ResolvedLocation{}, rerr
	}

	span.SetAttributes(attribute.String("delivery.geohash", loc.Point().Geohash()))
	r.apply[side].Lock()
	r.state.resolve(side, loc)
	if r.form != nil {
		r.form.SetAddress(side, loc.Address)
	}
	if r.view != nil {
		r.view.Recenter(ctx, loc.Point())
	}
	r.apply[side].Unlock()

	r.logger.LogAttrs(ctx, slog.LevelInfo, "location resolved",
		slog.String("action", "location_resolved"),
		slog.String("side", side.String()),
		slog.Float64("lat", loc.Latitude),
		slog.Float64("lng", loc.Longitude),
		slog.String("address", loc.Address),
	)
	return loc, nil
}
