package order

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

type recordingSink struct {
	records []Submission
	err     error
}

func (s *recordingSink) Write(_ context.Context, sub Submission) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, sub)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestSubmit_ValidDraftProducesExactlyOneSubmission(t *testing.T) {
	sink := &recordingSink{}
	sub := NewSubmitter(sink, discardLogger())

	form := NewForm()
	form.SetValues(validDraft().Values())

	pickup := geo.GeoPoint{Latitude: -6.2, Longitude: 106.8}
	dest := geo.GeoPoint{Latitude: -6.9175, Longitude: 107.6191}

	got, err := sub.Submit(context.Background(), form, pickup, dest)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected one record, got %d", len(sink.records))
	}

	want := Assemble(validDraft(), pickup, dest)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, sink.records[0]); diff != "" {
		t.Fatalf("sink record mismatch (-want +got):\n%s", diff)
	}
	if form.Draft() != (Draft{}) {
		t.Fatalf("expected form to reset after submit")
	}
}

func TestSubmit_InvalidDraftNeverReachesSink(t *testing.T) {
	sink := &recordingSink{}
	sub := NewSubmitter(sink, discardLogger())

	form := NewForm()
	d := validDraft()
	d.ReceiverPhone = "0812"
	d.Package = ""
	form.SetValues(d.Values())

	_, err := sub.Submit(context.Background(), form, geo.DefaultPoint, geo.DefaultPoint)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields.First(FieldReceiverPhone) != MessagePhone {
		t.Fatalf("expected receiver phone error, got %#v", verr.Fields)
	}
	if verr.Fields.First(FieldPackage) != MessageRequired {
		t.Fatalf("expected package error, got %#v", verr.Fields)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
	if form.Draft().ReceiverPhone != "0812" {
		t.Fatalf("expected the draft to survive a rejected submit")
	}
}

func TestSubmit_CarriesLastKnownCoordinatesWhenTextDiverged(t *testing.T) {
	var logs bytes.Buffer
	sink := &recordingSink{}
	sub := NewSubmitter(sink, slog.New(slog.NewTextHandler(&logs, nil)))

	form := NewForm()
	form.SetValues(validDraft().Values())
	form.SetAddress(geo.Pickup, "Jakarta, Indonesia")
	_ = form.Set(FieldPickup, "Somewhere else entirely")

	pickup := geo.GeoPoint{Latitude: -6.2, Longitude: 106.8}
	got, err := sub.Submit(context.Background(), form, pickup, geo.DefaultPoint)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Pickup != "Somewhere else entirely" {
		t.Fatalf("expected user text in submission, got %q", got.Pickup)
	}
	if got.PickupPoint() != pickup {
		t.Fatalf("expected last-known pickup coordinates, got %v", got.PickupPoint())
	}
	if got.DestinationPoint() != geo.DefaultPoint {
		t.Fatalf("expected default destination, got %v", got.DestinationPoint())
	}
	if !strings.Contains(logs.String(), "order_address_diverged") {
		t.Fatalf("expected divergence to be logged, got %s", logs.String())
	}
}

func TestSubmit_SinkFailureKeepsDraft(t *testing.T) {
	sink := &recordingSink{err: errors.New("boom")}
	sub := NewSubmitter(sink, discardLogger())

	form := NewForm()
	form.SetValues(validDraft().Values())

	if _, err := sub.Submit(context.Background(), form, geo.DefaultPoint, geo.DefaultPoint); err == nil {
		t.Fatalf("expected sink error")
	}
	if form.Draft() != validDraft() {
		t.Fatalf("expected draft to be kept when the sink fails")
	}
}

// writeDuringSink edits the form while the submission is being written.
type writeDuringSink struct {
	form *Form
}

func (s writeDuringSink) Write(context.Context, Submission) error {
	s.form.SetAddress(geo.Pickup, "Bandung, Indonesia")
	return nil
}

func TestSubmit_KeepsWriteThatLandsDuringSubmit(t *testing.T) {
	form := NewForm()
	form.SetValues(validDraft().Values())
	sub := NewSubmitter(writeDuringSink{form: form}, discardLogger())

	got, err := sub.Submit(context.Background(), form, geo.DefaultPoint, geo.DefaultPoint)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Pickup == "Bandung, Indonesia" {
		t.Fatalf("submission picked up a later write")
	}
	if form.Draft().Pickup != "Bandung, Indonesia" {
		t.Fatalf("write during submit was wiped: %#v", form.Draft())
	}
	if form.Source(geo.Pickup) != SourceResolver {
		t.Fatalf("source %v", form.Source(geo.Pickup))
	}
}

func TestForm_ResetIfUnchanged(t *testing.T) {
	form := NewForm()
	form.SetValues(validDraft().Values())
	seen := form.Draft()

	_ = form.Set(FieldPackage, "Books")
	if form.ResetIfUnchanged(seen) {
		t.Fatalf("reset despite a newer write")
	}
	if !form.ResetIfUnchanged(form.Draft()) || form.Draft() != (Draft{}) {
		t.Fatalf("expected reset of an unchanged draft")
	}
}

func TestSubmit_NoSink(t *testing.T) {
	var sub *Submitter
	if _, err := sub.Submit(context.Background(), NewForm(), geo.DefaultPoint, geo.DefaultPoint); !errors.Is(err, ErrNoSink) {
		t.Fatalf("expected ErrNoSink, got %v", err)
	}
}

func TestLogSink_WritesRecord(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))
	sub := Assemble(validDraft(), geo.GeoPoint{Latitude: -6.2, Longitude: 106.8}, geo.DefaultPoint)

	if err := sink.Write(context.Background(), sub); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"action":"order_submitted"`, `"pickupLat":-6.2`, `"senderName":"Budi"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
