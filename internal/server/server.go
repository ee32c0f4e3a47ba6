// Package server exposes the delivery order workspace over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dynamits/go-delivery-order/components/locationsearch"
	"github.com/dynamits/go-delivery-order/internal/config"
	"github.com/dynamits/go-delivery-order/pkg/formspec"
	"github.com/dynamits/go-delivery-order/pkg/mapview"
	"github.com/dynamits/go-delivery-order/pkg/order"
	"github.com/dynamits/go-delivery-order/pkg/render"
	"github.com/dynamits/go-delivery-order/pkg/session"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Store      *session.Store
	Page       *render.Page
	Spec       *formspec.Spec
	Sink       order.Sink
	Logger     *slog.Logger
	Translator render.Translator
}

// Server owns the HTTP surface and the session sweeper.
type Server struct {
	cfg        config.ServerConfig
	store      *session.Store
	page       *render.Page
	spec       *formspec.Spec
	sink       order.Sink
	logger     *slog.Logger
	translator render.Translator

	handler http.Handler

	streamsClosed chan struct{}
	closeOnce     sync.Once
}

// New validates deps and builds the routing tree.
func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("server: session store is required")
	}
	if deps.Page == nil {
		return nil, errors.New("server: page renderer is required")
	}
	if deps.Spec == nil {
		return nil, errors.New("server: form spec is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := deps.Sink
	if sink == nil {
		sink = order.NewLogSink(logger)
	}
	translator := deps.Translator
	if translator == nil {
		translator = render.DefaultCatalog()
	}

	s := &Server{
		cfg:        cfg,
		store:      deps.Store,
		page:       deps.Page,
		spec:       deps.Spec,
		sink:       sink,
		logger:     logger,
		translator: translator,

		streamsClosed: make(chan struct{}),
	}
	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.handler = handler
	return s, nil
}

// Handler returns the instrumented root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// sessionRoutes mounts component handlers behind the session middleware.
type sessionRoutes struct {
	mux  *http.ServeMux
	wrap func(http.Handler) http.Handler
}

func (m sessionRoutes) Handle(pattern string, handler http.Handler) {
	m.mux.Handle(pattern, m.wrap(handler))
}

func (s *Server) routes() (http.Handler, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/openapi.json", s.handleOpenAPI)

	search := locationsearch.New(
		locationsearch.WithSearcherFunc(func(r *http.Request) (locationsearch.Searcher, error) {
			sess, ok := sessionFrom(r.Context())
			if !ok {
				return nil, locationsearch.StatusError{Code: http.StatusUnauthorized, Err: session.ErrNotFound}
			}
			return sess, nil
		}),
	)
	if _, err := search.RegisterRoutes(sessionRoutes{mux: mux, wrap: s.withSession}, "/"); err != nil {
		return nil, fmt.Errorf("server: mount location search: %w", err)
	}

	mux.Handle("/ws/view", s.withSession(s.withStreamShutdown(mapview.ServeWS(
		func(r *http.Request) (*mapview.Publisher, error) {
			sess, ok := sessionFrom(r.Context())
			if !ok {
				return nil, session.ErrNotFound
			}
			return sess.View, nil
		},
		mapview.WithStreamLogger(s.logger),
	))))

	mux.Handle("/api/locations", s.withSession(http.HandlerFunc(s.handleLocations)))
	mux.Handle("/api/view", s.withSession(http.HandlerFunc(s.handleView)))
	mux.Handle("/api/orders/draft", s.withSession(http.HandlerFunc(s.handleDraft)))
	mux.Handle("/api/orders/validate", s.withSession(http.HandlerFunc(s.handleValidate)))
	mux.Handle("/api/orders", s.withSession(http.HandlerFunc(s.handleOrders)))
	mux.Handle("/", s.withSession(http.HandlerFunc(s.handlePage)))

	var h http.Handler = mux
	h = s.withRequestID(h)
	return otelhttp.NewHandler(h, "deliveryd",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	), nil
}

// Run serves on cfg.Addr until ctx is cancelled, then drains connections for
// up to cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	// Shutdown does not track hijacked connections; view streams close on
	// their own signal.
	httpServer.RegisterOnShutdown(s.closeStreams)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	s.logger.Info("service started",
		slog.String("action", "service_started"),
		slog.String("addr", ln.Addr().String()),
	)

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down",
		slog.String("action", "graceful_shutdown"),
		slog.Duration("grace", s.cfg.ShutdownTimeout),
	)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) closeStreams() {
	s.closeOnce.Do(func() { close(s.streamsClosed) })
}

func (s *Server) sweep(ctx context.Context) {
	interval := s.cfg.SweepInterval
	if interval <= 0 || s.cfg.SessionIdle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.store.Sweep(ctx, s.cfg.SessionIdle)
		}
	}
}
