package order

import (
	"errors"
	"testing"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

func TestForm_SetUnknownField(t *testing.T) {
	f := NewForm()
	if err := f.Set("weight", "2kg"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestForm_ResolverOverwritesUserText(t *testing.T) {
	f := NewForm()
	if err := f.Set(FieldDestination, "bandung"); err != nil {
		t.Fatalf("set: %v", err)
	}
	f.SetAddress(geo.Destination, "Bandung, West Java, Indonesia")

	if got := f.Draft().Destination; got != "Bandung, West Java, Indonesia" {
		t.Fatalf("expected resolver text, got %q", got)
	}
	if f.Source(geo.Destination) != SourceResolver {
		t.Fatalf("expected resolver source, got %v", f.Source(geo.Destination))
	}
	if f.Diverged(geo.Destination) {
		t.Fatalf("expected no divergence right after resolution")
	}
}

func TestForm_UserEditAfterResolutionDiverges(t *testing.T) {
	f := NewForm()
	f.SetAddress(geo.Pickup, "Jakarta, Indonesia")
	if err := f.Set(FieldPickup, "Jakarta Selatan"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if f.Draft().Pickup != "Jakarta Selatan" {
		t.Fatalf("expected user text to win, got %q", f.Draft().Pickup)
	}
	if f.Source(geo.Pickup) != SourceUser {
		t.Fatalf("expected user source")
	}
	if !f.Diverged(geo.Pickup) {
		t.Fatalf("expected pickup to be reported as diverged")
	}
	if f.Diverged(geo.Destination) {
		t.Fatalf("destination was never resolved and cannot diverge")
	}

	// Typing the resolved text back closes the gap.
	if err := f.Set(FieldPickup, "Jakarta, Indonesia "); err != nil {
		t.Fatalf("set: %v", err)
	}
	if f.Diverged(geo.Pickup) {
		t.Fatalf("expected no divergence once text matches again")
	}
}

func TestForm_SetValuesIgnoresUnknownKeys(t *testing.T) {
	f := NewForm()
	f.SetValues(map[string]string{
		FieldSenderName: "Budi",
		FieldPackage:    "food",
		"csrf":          "token",
	})
	d := f.Draft()
	if d.SenderName != "Budi" || d.Package != "food" {
		t.Fatalf("unexpected draft %#v", d)
	}
}

func TestForm_Reset(t *testing.T) {
	f := NewForm()
	f.SetValues(validDraft().Values())
	f.SetAddress(geo.Pickup, "Jakarta, Indonesia")
	f.Reset()

	if f.Draft() != (Draft{}) {
		t.Fatalf("expected empty draft, got %#v", f.Draft())
	}
	if f.Source(geo.Pickup) != SourceNone {
		t.Fatalf("expected tracking to reset")
	}
}

func TestDraft_ValuesRoundTrip(t *testing.T) {
	d := validDraft()
	f := NewForm()
	f.SetValues(d.Values())
	if got := f.Draft(); got != d {
		t.Fatalf("expected round trip, got %#v", got)
	}
}
