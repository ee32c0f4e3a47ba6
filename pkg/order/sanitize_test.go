package order

import "testing"

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"":                              "",
		"  Budi  ":                      "Budi",
		"<script>alert(1)</script>Sari": "Sari",
		"Jl. Merdeka & Sudirman":        "Jl. Merdeka & Sudirman",
		"Sender's <em>parcel</em>":      "Sender's parcel",
		"Jakarta, <b>Indonesia</b>":     "Jakarta, Indonesia",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_TouchesEveryField(t *testing.T) {
	d := Normalize(Draft{
		SenderName:    " a ",
		SenderPhone:   " b ",
		Pickup:        " c ",
		ReceiverName:  " d ",
		ReceiverPhone: " e ",
		Destination:   " f ",
		Package:       " g ",
	})
	want := Draft{"a", "b", "c", "d", "e", "f", "g"}
	if d != want {
		t.Fatalf("unexpected normalised draft %#v", d)
	}
}
