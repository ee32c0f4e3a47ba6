package order

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Sanitize strips markup from user or provider supplied text and trims it. The
// result is plain text: entities escaped by the policy are decoded again so
// addresses like "Jl. A & B" survive intact.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Normalize sanitises every field of the draft.
func Normalize(d Draft) Draft {
	return Draft{
		SenderName:    Sanitize(d.SenderName),
		SenderPhone:   Sanitize(d.SenderPhone),
		Pickup:        Sanitize(d.Pickup),
		ReceiverName:  Sanitize(d.ReceiverName),
		ReceiverPhone: Sanitize(d.ReceiverPhone),
		Destination:   Sanitize(d.Destination),
		Package:       Sanitize(d.Package),
	}
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
