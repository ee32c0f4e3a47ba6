// Command deliveryd serves the delivery order page and its JSON API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dynamits/go-delivery-order/internal/config"
	"github.com/dynamits/go-delivery-order/internal/logging"
	"github.com/dynamits/go-delivery-order/internal/server"
	"github.com/dynamits/go-delivery-order/internal/tracing"
	"github.com/dynamits/go-delivery-order/pkg/formspec"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
	"github.com/dynamits/go-delivery-order/pkg/order"
	"github.com/dynamits/go-delivery-order/pkg/render"
	"github.com/dynamits/go-delivery-order/pkg/session"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Config file (YAML or JSON)")
		envFlag    = flag.String("env", ".env", "Dotenv file loaded before the environment")
		addrFlag   = flag.String("addr", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag, *envFlag)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Service: cfg.Tracing.ServiceName,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Writer:  os.Stdout,
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("service failed", slog.String("action", "service_failed"), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run owns every resource that needs releasing, so it returns instead of
// exiting.
func run(cfg config.Config, logger *slog.Logger) error {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(tracing.Options{
		Endpoint:    cfg.Tracing.JaegerEndpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", slog.String("action", "tracing_shutdown"), slog.String("error", err.Error()))
		}
	}()

	geocoder, err := geocode.New(
		geocode.WithBaseURL(cfg.Maps.BaseURL),
		geocode.WithAPIKey(cfg.Maps.APIKey),
		geocode.WithTimeout(cfg.Maps.Timeout),
	)
	if err != nil {
		return fmt.Errorf("geocoder: %w", err)
	}

	spec, err := formspec.Load(ctx)
	if err != nil {
		return fmt.Errorf("form spec: %w", err)
	}
	page, err := render.NewPage(render.WithMapsScriptURL(cfg.Maps.ScriptURL))
	if err != nil {
		return fmt.Errorf("page: %w", err)
	}

	store := session.NewStore(geocoder,
		session.WithInitialLocation(cfg.Defaults.Location()),
		session.WithMapID(cfg.Maps.MapID),
		session.WithLogger(logger),
	)

	srv, err := server.New(cfg.Server, server.Deps{
		Store:  store,
		Page:   page,
		Spec:   spec,
		Sink:   order.NewLogSink(logger),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
