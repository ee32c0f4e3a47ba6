package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dynamits/go-delivery-order/pkg/location"
	"github.com/dynamits/go-delivery-order/pkg/order"
)

// DefaultLocale is used when a request carries no locale.
const DefaultLocale = "en"

// ErrMissingTranslator is passed to OnMissing when no translator is configured.
var ErrMissingTranslator = errors.New("render: translator is not configured")

// ErrMissingTranslation is returned by Catalog for unknown keys.
var ErrMissingTranslation = errors.New("render: missing translation")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated. params carries {"default": fallback} as its first element.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

// Keys for page chrome.
const (
	KeyPageTitle   = "page.title"
	KeySubmit      = "page.submit"
	KeySearch      = "page.search"
	KeySubmitted   = "page.submitted"
	KeyDisplayHint = "page.display"
)

// Catalog is an in-memory Translator keyed by locale then message key. Lookups
// for a regional locale ("id-ID") fall back to its base language ("id").
type Catalog map[string]map[string]string

func (c Catalog) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range localeChain(locale) {
		if msg, ok := c[candidate][key]; ok && strings.TrimSpace(msg) != "" {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
}

func localeChain(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return []string{DefaultLocale}
	}
	chain := []string{locale}
	if base, _, ok := strings.Cut(locale, "-"); ok && base != "" {
		chain = append(chain, base)
	}
	return chain
}

// DefaultCatalog carries the messages used by validation and location search.
// Not-found messages take the side label as their only argument.
func DefaultCatalog() Catalog {
	return Catalog{
		"en": {
			order.KeyRequired:    order.MessageRequired,
			order.KeyPhone:       order.MessagePhone,
			location.KeyNotFound: "%s location not found, please try again.",
			location.KeyFailure:  location.MessageFailure,
			KeyPageTitle:         "Create Delivery Order",
			KeySubmit:            "Submit Order",
			KeySearch:            "Search",
			KeySubmitted:         "Order submitted.",
			KeyDisplayHint:       "Last resolved location",
			"side.pickup":        "Pickup",
			"side.destination":   "Destination",
		},
		"id": {
			order.KeyRequired:    "Kolom ini wajib diisi!",
			order.KeyPhone:       "Masukkan nomor telepon yang valid",
			location.KeyNotFound: "Lokasi %s tidak ditemukan, silakan coba lagi.",
			location.KeyFailure:  "Terjadi kesalahan. Silakan coba lagi.",
			KeyPageTitle:         "Buat Pesanan Pengiriman",
			KeySubmit:            "Kirim Pesanan",
			KeySearch:            "Cari",
			KeySubmitted:         "Pesanan terkirim.",
			KeyDisplayHint:       "Lokasi terakhir",
			"side.pickup":        "penjemputan",
			"side.destination":   "tujuan",
		},
	}
}

// Translate resolves key, falling back to onMissing and then to fallback.
func Translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler, args ...any) string {
	return translate(locale, key, fallback, t, onMissing, args...)
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func missingTranslationDefault(_ string, key string, params []any, _ error) string {
	if len(params) > 0 {
		if m, ok := params[0].(map[string]any); ok {
			if fallback, ok := m["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// TranslateMessage localises a validation message produced by the order
// package. Unknown messages pass through unchanged.
func TranslateMessage(locale, message string, t Translator, onMissing MissingTranslationHandler) string {
	key := order.MessageKey(message)
	if key == "" {
		return message
	}
	return translate(locale, key, message, t, onMissing)
}

// TranslateResolveError localises a side's search failure.
func TranslateResolveError(locale string, err *location.ResolveError, t Translator, onMissing MissingTranslationHandler) string {
	if err == nil {
		return ""
	}
	if err.MessageKey() == location.KeyNotFound {
		label := translate(locale, "side."+err.Side.String(), err.Side.Label(), t, onMissing)
		return translate(locale, location.KeyNotFound, err.Message, t, onMissing, label)
	}
	return translate(locale, location.KeyFailure, err.Message, t, onMissing)
}
