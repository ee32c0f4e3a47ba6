package order

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnknownField is returned when a field name is not part of Draft.
	ErrUnknownField = errors.New("order: unknown field")
	// ErrNoSink signals a Submitter built without a destination for records.
	ErrNoSink = errors.New("order: submission sink is not configured")
)

// FieldErrors maps JSON field names to their validation messages. A nil map
// means the draft is valid.
type FieldErrors map[string][]string

// Add appends a message to a field, ignoring blanks and duplicates.
func (fe FieldErrors) Add(field, message string) FieldErrors {
	message = strings.TrimSpace(message)
	if message == "" {
		return fe
	}
	if fe == nil {
		fe = make(FieldErrors)
	}
	for _, existing := range fe[field] {
		if existing == message {
			return fe
		}
	}
	fe[field] = append(fe[field], message)
	return fe
}

// First returns the first message attached to field.
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the names of fields carrying errors, in form order.
func (fe FieldErrors) Fields() []string {
	if len(fe) == 0 {
		return nil
	}
	order := make(map[string]int, len(Fields))
	for i, name := range Fields {
		order[name] = i
	}
	out := make([]string, 0, len(fe))
	for name := range fe {
		out = append(out, name)
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, iok := order[out[i]]
		oj, jok := order[out[j]]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return out[i] < out[j]
	})
	return out
}

// Messages flattens the errors as "field: message" strings in form order.
func (fe FieldErrors) Messages() []string {
	var out []string
	for _, name := range fe.Fields() {
		for _, msg := range fe[name] {
			out = append(out, name+": "+msg)
		}
	}
	return out
}

// ValidationError blocks a submission until the user fixes the listed fields.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "order: validation failed"
	}
	return "order: validation failed: " + strings.Join(e.Fields.Messages(), "; ")
}
