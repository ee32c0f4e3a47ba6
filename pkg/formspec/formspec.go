// Package formspec reads the order form's field metadata (labels, placeholders,
// order and rules) from the embedded OpenAPI description of the order API.
package formspec

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

//go:embed openapi.yaml
var document []byte

const (
	submitPath  = "/api/orders"
	contentType = "application/json"

	extPlaceholder = "x-placeholder"
	extOrder       = "x-order"
	extSearchSide  = "x-search-side"
)

// Field describes one input of the order form.
type Field struct {
	Name        string
	Label       string
	Placeholder string
	Required    bool
	MinLength   int
	// Searchable is set for the address fields backed by a location search.
	Searchable bool
	Side       geo.Side
}

// Spec is the loaded API description.
type Spec struct {
	doc    *openapi3.T
	fields []Field
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Spec, error) {
	return LoadFromData(ctx, document)
}

// LoadFromData parses and validates data, then extracts the order draft fields.
func LoadFromData(ctx context.Context, data []byte) (*Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("formspec: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("formspec: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("formspec: validate: %w", err)
	}

	schema, err := draftSchema(doc)
	if err != nil {
		return nil, err
	}
	fields, err := extractFields(schema)
	if err != nil {
		return nil, err
	}
	return &Spec{doc: doc, fields: fields}, nil
}

// Fields returns the form fields in display order.
func (s *Spec) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Field looks up one field by name.
func (s *Spec) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Document returns the description as JSON.
func (s *Spec) Document() ([]byte, error) {
	if s == nil || s.doc == nil {
		return nil, errors.New("formspec: no document")
	}
	return json.Marshal(s.doc)
}

func draftSchema(doc *openapi3.T) (*openapi3.Schema, error) {
	if doc.Paths == nil {
		return nil, errors.New("formspec: document does not contain any paths")
	}
	item := doc.Paths.Map()[submitPath]
	if item == nil || item.Post == nil {
		return nil, fmt.Errorf("formspec: missing POST %s", submitPath)
	}
	body := item.Post.RequestBody
	if body == nil || body.Value == nil {
		return nil, fmt.Errorf("formspec: POST %s has no request body", submitPath)
	}
	mt := body.Value.Content[contentType]
	if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return nil, fmt.Errorf("formspec: POST %s has no %s schema", submitPath, contentType)
	}
	return mt.Schema.Value, nil
}

func extractFields(schema *openapi3.Schema) ([]Field, error) {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	type ordered struct {
		field Field
		order int
	}
	items := make([]ordered, 0, len(schema.Properties))
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		field := Field{
			Name:        name,
			Label:       prop.Title,
			Placeholder: stringExtension(prop.Extensions, extPlaceholder),
			Required:    required[name],
			MinLength:   int(prop.MinLength),
		}
		if field.Label == "" {
			field.Label = name
		}
		if raw := stringExtension(prop.Extensions, extSearchSide); raw != "" {
			side, err := geo.ParseSide(raw)
			if err != nil {
				return nil, fmt.Errorf("formspec: field %s: %w", name, err)
			}
			field.Searchable = true
			field.Side = side
		}
		items = append(items, ordered{field: field, order: intExtension(prop.Extensions, extOrder)})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].order != items[j].order {
			return items[i].order < items[j].order
		}
		return items[i].field.Name < items[j].field.Name
	})

	fields := make([]Field, len(items))
	for i, item := range items {
		fields[i] = item.field
	}
	return fields, nil
}

func stringExtension(ext map[string]any, key string) string {
	if value, ok := ext[key].(string); ok {
		return value
	}
	return ""
}

func intExtension(ext map[string]any, key string) int {
	switch value := ext[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case int64:
		return int(value)
	case json.Number:
		n, _ := value.Int64()
		return int(n)
	default:
		return 1 << 30
	}
}
