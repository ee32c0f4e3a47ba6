package order

import (
	"context"
	"log/slog"
)

// Sink receives assembled submissions.
type Sink interface {
	Write(ctx context.Context, sub Submission) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, sub Submission) error

func (fn SinkFunc) Write(ctx context.Context, sub Submission) error {
	return fn(ctx, sub)
}

// LogSink writes submissions to the diagnostic log. It is the only sink the
// service ships with.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink logging through logger, or slog.Default when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, sub Submission) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "order submitted",
		slog.String("action", "order_submitted"),
		slog.Group("order",
			slog.String("senderName", sub.SenderName),
			slog.String("senderNumber", sub.SenderPhone),
			slog.String("pickup", sub.Pickup),
			slog.String("receiverName", sub.ReceiverName),
			slog.String("receiverNumber", sub.ReceiverPhone),
			slog.String("destination", sub.Destination),
			slog.String("package", sub.Package),
			slog.Float64("pickupLat", sub.PickupLatitude),
			slog.Float64("pickupLng", sub.PickupLongitude),
			slog.Float64("destinationLat", sub.DestinationLatitude),
			slog.Float64("destinationLng", sub.DestinationLongitude),
		),
	)
	return nil
}
