package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

// Submitter validates a form and hands the assembled record to a sink.
type Submitter struct {
	sink   Sink
	logger *slog.Logger
}

// NewSubmitter wires a submitter. A nil logger falls back to slog.Default.
func NewSubmitter(sink Sink, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{sink: sink, logger: logger}
}

// Submit validates the form's draft. Invalid drafts return a *ValidationError and
// never reach the sink. Valid drafts are assembled with the given marker
// positions, written to the sink exactly once, and the form is reset unless it was
// written to while the submission was in flight.
func (s *Submitter) Submit(ctx context.Context, form *Form, pickup, destination geo.GeoPoint) (Submission, error) {
	if s == nil || s.sink == nil {
		return Submission{}, ErrNoSink
	}
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}

	seen := form.Draft()
	draft := Normalize(seen)
	if errs := Validate(draft); errs != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "order rejected",
			slog.String("action", "order_rejected"),
			slog.Any("fields", errs.Fields()),
		)
		return Submission{}, &ValidationError{Fields: errs}
	}

	for _, side := range geo.Sides {
		if form.Diverged(side) {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "address edited after resolution",
				slog.String("action", "order_address_diverged"),
				slog.String("side", side.String()),
			)
		}
	}

	sub := Assemble(draft, pickup, destination)
	if err := s.sink.Write(ctx, sub); err != nil {
		return Submission{}, fmt.Errorf("order: write submission: %w", err)
	}
	if !form.ResetIfUnchanged(seen) {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "form edited during submit, draft kept",
			slog.String("action", "order_draft_kept"),
		)
	}
	return sub, nil
}
