package render

import "strings"

// ErrorMapping splits an error payload into field-level and form-level
// messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises form-level messages, trimming
// whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapFieldErrors routes payload messages onto the known field names. Keys may
// be plain names or JSON pointer style paths ("/body/senderName"). Keys that
// match no field become form-level errors so messages are not lost.
func MapFieldErrors(fields []string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]struct{}, len(fields))
	for _, name := range fields {
		if name = strings.TrimSpace(name); name != "" {
			known[name] = struct{}{}
		}
	}

	for key, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		field, ok := fieldForKey(key, known)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[field] = normalizeMessages(append(mapping.Fields[field], normalized...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// Localize translates every message in the mapping.
func (m ErrorMapping) Localize(locale string, t Translator, onMissing MissingTranslationHandler) ErrorMapping {
	out := ErrorMapping{}
	if len(m.Fields) > 0 {
		out.Fields = make(map[string][]string, len(m.Fields))
		for field, messages := range m.Fields {
			for _, msg := range messages {
				out.Fields[field] = append(out.Fields[field], TranslateMessage(locale, msg, t, onMissing))
			}
		}
	}
	for _, msg := range m.Form {
		out.Form = append(out.Form, TranslateMessage(locale, msg, t, onMissing))
	}
	return out
}

// First returns the first message for field.
func (m ErrorMapping) First(field string) string {
	if msgs := m.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// fieldForKey finds the field a payload key points at. Keys may be plain
// names, validator namespaces ("Draft.senderName"), JSON pointers
// ("/body/senderName") or JSONPath-ish ("$.data.pickup", "errors[0].package").
// The deepest segment naming a known field wins.
func fieldForKey(key string, known map[string]struct{}) (string, bool) {
	segments := strings.FieldsFunc(strings.TrimSpace(key), func(r rune) bool {
		switch r {
		case '.', '/', '#', '$', '[', ']':
			return true
		}
		return false
	})
	for i := len(segments) - 1; i >= 0; i-- {
		if _, ok := known[segments[i]]; ok {
			return segments[i], true
		}
	}
	return "", false
}
