package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dynamits/go-delivery-order/pkg/order"
)

func TestMapFieldErrors_PathsAndFormLevel(t *testing.T) {
	payload := map[string][]string{
		"senderName":          {"This field is required!", " This field is required! "},
		"/body/senderNumber":  {"Please enter a valid phone number"},
		"$.data.pickup":       {"This field is required!"},
		"errors[0].package":   {"Too heavy"},
		"non_field_errors":    {"Form level error"},
		"request/body/coupon": {"Should fall back to form errors"},
		"":                    {"Unscoped form error", "  "},
	}

	mapped := MapFieldErrors(order.Fields, payload)

	wantFields := map[string][]string{
		"senderName":   {"This field is required!"},
		"senderNumber": {"Please enter a valid phone number"},
		"pickup":       {"This field is required!"},
		"package":      {"Too heavy"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapFieldErrors_Empty(t *testing.T) {
	mapped := MapFieldErrors(order.Fields, nil)
	if mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %#v", mapped)
	}
}

func TestErrorMapping_Localize(t *testing.T) {
	mapped := MapFieldErrors(order.Fields, map[string][]string{
		"receiverNumber": {order.MessagePhone},
		"form":           {order.MessageRequired},
	})
	localized := mapped.Localize("id", DefaultCatalog(), nil)
	if got := localized.First("receiverNumber"); got != "Masukkan nomor telepon yang valid" {
		t.Fatalf("field: %q", got)
	}
	if diff := cmp.Diff([]string{"Kolom ini wajib diisi!"}, localized.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
