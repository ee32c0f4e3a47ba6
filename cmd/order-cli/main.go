// Command order-cli fills in a delivery order from the terminal and logs it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dynamits/go-delivery-order/internal/config"
	"github.com/dynamits/go-delivery-order/internal/logging"
	"github.com/dynamits/go-delivery-order/pkg/formspec"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
	"github.com/dynamits/go-delivery-order/pkg/order"
	"github.com/dynamits/go-delivery-order/pkg/prompt"
	"github.com/dynamits/go-delivery-order/pkg/session"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Config file (YAML or JSON)")
		envFlag    = flag.String("env", ".env", "Dotenv file loaded before the environment")
		langFlag   = flag.String("lang", "en", "Message locale (en, id)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag, *envFlag)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Prompts own stdout; logs go to stderr.
	logger, err := logging.New(logging.Options{
		Service: "order-cli",
		Level:   cfg.Log.Level,
		Format:  "text",
		Writer:  os.Stderr,
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	geocoder, err := geocode.New(
		geocode.WithBaseURL(cfg.Maps.BaseURL),
		geocode.WithAPIKey(cfg.Maps.APIKey),
		geocode.WithTimeout(cfg.Maps.Timeout),
	)
	if err != nil {
		log.Fatalf("geocoder: %v", err)
	}
	spec, err := formspec.Load(ctx)
	if err != nil {
		log.Fatalf("form spec: %v", err)
	}

	store := session.NewStore(geocoder,
		session.WithInitialLocation(cfg.Defaults.Location()),
		session.WithMapID(cfg.Maps.MapID),
		session.WithLogger(logger),
	)

	run := prompt.NewSession(
		prompt.NewSurveyDriver(),
		store.Create(),
		spec.Fields(),
		order.NewLogSink(logger),
		prompt.WithLocale(*langFlag),
		prompt.WithLogger(logger),
	)

	sub, err := run.Run(ctx)
	switch {
	case errors.Is(err, prompt.ErrAborted):
		fmt.Fprintln(os.Stderr, "aborted")
		os.Exit(130)
	case errors.Is(err, prompt.ErrDeclined):
		fmt.Fprintln(os.Stderr, "order not submitted")
		os.Exit(1)
	case err != nil:
		logger.Error("order failed", slog.String("action", "order_failed"), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("order complete",
		slog.String("action", "order_complete"),
		slog.String("pickup", sub.Pickup),
		slog.String("destination", sub.Destination),
	)
}
