package render

import (
	"errors"
	"testing"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
	"github.com/dynamits/go-delivery-order/pkg/location"
	"github.com/dynamits/go-delivery-order/pkg/order"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestTranslate_FallbackChain(t *testing.T) {
	if got := Translate("en", "x", "Fallback", nil, nil); got != "Fallback" {
		t.Fatalf("nil translator: %q", got)
	}
	if got := Translate("en", "x", "", nil, nil); got != "x" {
		t.Fatalf("nil translator without fallback: %q", got)
	}
	if got := Translate("en", "x", "Fallback", stubTranslator{"x": "Hit"}, nil); got != "Hit" {
		t.Fatalf("translator hit: %q", got)
	}

	var gotErr error
	onMissing := func(locale, key string, params []any, err error) string {
		gotErr = err
		return "missing:" + key
	}
	if got := Translate("en", "y", "Fallback", stubTranslator{}, onMissing); got != "missing:y" {
		t.Fatalf("onMissing result: %q", got)
	}
	if gotErr == nil {
		t.Fatalf("onMissing should receive the translator error")
	}
	if got := Translate("en", "y", "Fallback", nil, onMissing); got != "missing:y" || !errors.Is(gotErr, ErrMissingTranslator) {
		t.Fatalf("onMissing without translator: %q %v", got, gotErr)
	}
}

func TestCatalog_RegionalFallsBackToBase(t *testing.T) {
	c := DefaultCatalog()
	got, err := c.Translate("id-ID", order.KeyRequired)
	if err != nil || got != "Kolom ini wajib diisi!" {
		t.Fatalf("got %q %v", got, err)
	}
	if _, err := c.Translate("fr", order.KeyRequired); !errors.Is(err, ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
	got, _ = c.Translate("", KeySubmit)
	if got != "Submit Order" {
		t.Fatalf("empty locale should use %s, got %q", DefaultLocale, got)
	}
}

func TestTranslateMessage(t *testing.T) {
	c := DefaultCatalog()
	if got := TranslateMessage("id", order.MessagePhone, c, nil); got != "Masukkan nomor telepon yang valid" {
		t.Fatalf("got %q", got)
	}
	if got := TranslateMessage("id", "Something custom", c, nil); got != "Something custom" {
		t.Fatalf("unknown message should pass through, got %q", got)
	}
}

func TestTranslateResolveError(t *testing.T) {
	c := DefaultCatalog()
	notFound := &location.ResolveError{
		Side:    geo.Pickup,
		Kind:    geocode.KindNotFound,
		Message: location.NotFoundMessage(geo.Pickup),
	}
	if got := TranslateResolveError("en", notFound, c, nil); got != "Pickup location not found, please try again." {
		t.Fatalf("en: %q", got)
	}
	if got := TranslateResolveError("id", notFound, c, nil); got != "Lokasi penjemputan tidak ditemukan, silakan coba lagi." {
		t.Fatalf("id: %q", got)
	}

	failure := &location.ResolveError{Side: geo.Destination, Kind: geocode.KindFailure, Message: location.MessageFailure}
	if got := TranslateResolveError("en", failure, c, nil); got != location.MessageFailure {
		t.Fatalf("failure: %q", got)
	}
	if got := TranslateResolveError("en", nil, c, nil); got != "" {
		t.Fatalf("nil: %q", got)
	}
}
