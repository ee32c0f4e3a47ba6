package prompt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dynamits/go-delivery-order/pkg/formspec"
	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
	"github.com/dynamits/go-delivery-order/pkg/order"
	"github.com/dynamits/go-delivery-order/pkg/session"
	"github.com/dynamits/go-delivery-order/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	confirm      []bool
	infoMessages []string
	prompts      []Question
	inputPos     int
	confirmPos   int
	rejected     []string
}

// Ask replays scripted answers. Answers failing the prompt's validator are
// recorded and skipped, the way survey re-asks on a validation error.
func (s *stubDriver) Ask(_ context.Context, cfg Question) (string, error) {
	s.prompts = append(s.prompts, cfg)
	for {
		if s.inputPos >= len(s.inputs) {
			return "", errors.New("no input scripted")
		}
		val := s.inputs[s.inputPos]
		s.inputPos++
		if cfg.Validate != nil {
			if err := cfg.Validate(val); err != nil {
				s.rejected = append(s.rejected, err.Error())
				continue
			}
		}
		return val, nil
	}
}

func (s *stubDriver) Confirm(_ context.Context, _ Confirmation) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Say(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type abortDriver struct{ stubDriver }

func (a *abortDriver) Ask(context.Context, Question) (string, error) {
	return "", ErrAborted
}

func setup(t *testing.T) (*session.Session, []formspec.Field, *testsupport.GeocodeServer) {
	t.Helper()
	srv := testsupport.NewGeocodeServer(t)
	client, err := geocode.New(geocode.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("geocoder: %v", err)
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewStore(client, session.WithLogger(quiet))
	spec, err := formspec.Load(context.Background())
	if err != nil {
		t.Fatalf("formspec: %v", err)
	}
	return store.Create(), spec.Fields(), srv
}

func TestRun_CompleteOrder(t *testing.T) {
	ws, fields, srv := setup(t)
	srv.Answer("Jakarta", testsupport.Jakarta)
	srv.Answer("Surabaya", testsupport.Place{Lat: -7.25, Lng: 112.75, Address: "Surabaya, Indonesia"})

	driver := &stubDriver{
		inputs: []string{
			"Ayu",
			"0812", "081234567",
			"Atlantis", "Jakarta",
			"Budi",
			"0819876543",
			"Surabaya",
			"Books",
		},
		confirm: []bool{true},
	}

	var got []order.Submission
	sink := order.SinkFunc(func(_ context.Context, sub order.Submission) error {
		got = append(got, sub)
		return nil
	})

	sub, err := NewSession(driver, ws, fields, sink).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("sink called %d times", len(got))
	}
	if sub.Pickup != "Jakarta, Indonesia" || sub.PickupPoint() != (geo.GeoPoint{Latitude: -6.2, Longitude: 106.8}) {
		t.Fatalf("pickup %q %v", sub.Pickup, sub.PickupPoint())
	}
	if sub.Destination != "Surabaya, Indonesia" || sub.SenderPhone != "081234567" {
		t.Fatalf("submission %#v", sub)
	}

	if len(driver.rejected) != 1 || driver.rejected[0] != order.MessagePhone {
		t.Fatalf("rejected answers %v", driver.rejected)
	}
	if !containsMessage(driver.infoMessages, "Pickup location not found, please try again.") {
		t.Fatalf("missing not-found message in %v", driver.infoMessages)
	}
	if !containsMessage(driver.infoMessages, "Order submitted.") {
		t.Fatalf("missing confirmation in %v", driver.infoMessages)
	}
}

func TestRun_DeclineKeepsForm(t *testing.T) {
	ws, fields, srv := setup(t)
	srv.Answer("A", testsupport.Jakarta)
	srv.Answer("B", testsupport.Jakarta)

	driver := &stubDriver{
		inputs:  []string{"Ayu", "081234567", "A", "Budi", "081234567", "B", "Books"},
		confirm: []bool{false},
	}
	sink := order.SinkFunc(func(context.Context, order.Submission) error {
		t.Fatalf("sink should not be called")
		return nil
	})

	_, err := NewSession(driver, ws, fields, sink).Run(context.Background())
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if ws.Form.Draft().SenderName != "Ayu" {
		t.Fatalf("form should be kept, got %#v", ws.Form.Draft())
	}
}

func TestRun_Aborted(t *testing.T) {
	ws, fields, _ := setup(t)
	_, err := NewSession(&abortDriver{}, ws, fields, order.NewLogSink(nil)).Run(context.Background())
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRun_LocalizedMessages(t *testing.T) {
	ws, fields, srv := setup(t)
	srv.Answer("Jakarta", testsupport.Jakarta)

	driver := &stubDriver{
		inputs:  []string{"Ayu", "1", "081234567", "x", "Jakarta", "Budi", "081234567", "Jakarta", "Books"},
		confirm: []bool{true},
	}
	_, err := NewSession(driver, ws, fields, order.SinkFunc(func(context.Context, order.Submission) error { return nil }),
		WithLocale("id")).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.rejected) != 1 || driver.rejected[0] != "Masukkan nomor telepon yang valid" {
		t.Fatalf("rejected %v", driver.rejected)
	}
	if !containsMessage(driver.infoMessages, "Lokasi penjemputan tidak ditemukan, silakan coba lagi.") {
		t.Fatalf("missing localized not-found in %v", driver.infoMessages)
	}
}

func containsMessage(messages []string, want string) bool {
	for _, msg := range messages {
		if strings.Contains(msg, want) {
			return true
		}
	}
	return false
}
