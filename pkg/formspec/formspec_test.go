package formspec

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/order"
	"github.com/dynamits/go-delivery-order/pkg/testsupport"
)

const fieldsGolden = "testdata/fields.golden.json"

func TestLoad_FieldsGolden(t *testing.T) {
	spec, err := Load(testsupport.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := spec.Fields()

	payload, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	if testsupport.WriteMaybeGolden(t, fieldsGolden, payload) {
		return
	}

	var want []Field
	if err := json.Unmarshal(testsupport.MustReadGolden(t, fieldsGolden), &want); err != nil {
		t.Fatalf("decode golden: %v", err)
	}
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FieldsInFormOrder(t *testing.T) {
	spec, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var names []string
	for _, f := range spec.Fields() {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff(order.Fields, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FieldMetadata(t *testing.T) {
	spec, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	pickup, ok := spec.Field("pickup")
	if !ok {
		t.Fatalf("pickup field missing")
	}
	want := Field{
		Name:        "pickup",
		Label:       "Pickup Location",
		Placeholder: "Enter pickup location",
		Required:    true,
		Searchable:  true,
		Side:        geo.Pickup,
	}
	if diff := cmp.Diff(want, pickup); diff != "" {
		t.Fatalf("pickup mismatch (-want +got):\n%s", diff)
	}

	dest, _ := spec.Field("destination")
	if !dest.Searchable || dest.Side != geo.Destination {
		t.Fatalf("destination %#v", dest)
	}
	if _, ok := spec.Field("nope"); ok {
		t.Fatalf("unexpected field")
	}
}

// The document and the validator must agree on which fields carry a length rule.
func TestLoad_RulesMatchOrderValidation(t *testing.T) {
	spec, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, f := range spec.Fields() {
		if !f.Required {
			t.Fatalf("%s should be required", f.Name)
		}
		short := strings.Repeat("1", f.MinLength)
		if f.MinLength > 0 {
			short = strings.Repeat("1", f.MinLength-1)
			msgs, err := order.ValidateField(f.Name, short)
			if err != nil {
				t.Fatalf("validate %s: %v", f.Name, err)
			}
			if len(msgs) == 0 {
				t.Fatalf("%s accepted %d characters", f.Name, len(short))
			}
		}
		msgs, err := order.ValidateField(f.Name, short+"1")
		if err != nil {
			t.Fatalf("validate %s: %v", f.Name, err)
		}
		if len(msgs) != 0 {
			t.Fatalf("%s rejected a valid value: %v", f.Name, msgs)
		}
	}
}

func TestSpec_DocumentIsJSON(t *testing.T) {
	spec, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	raw, err := spec.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["openapi"] != "3.0.3" {
		t.Fatalf("openapi version %v", decoded["openapi"])
	}
}

func TestLoadFromData_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := LoadFromData(ctx, nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := LoadFromData(ctx, []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n")); err == nil {
		t.Fatalf("expected error for a document without the order path")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := LoadFromData(cancelled, document); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
