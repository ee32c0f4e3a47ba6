// Package testsupport holds helpers shared by package tests: a scripted fake of
// the geocoding provider and small golden/diff utilities.
package testsupport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Place is one provider candidate.
type Place struct {
	Lat     float64
	Lng     float64
	Address string
}

// Jakarta is the candidate used throughout the scenario tests.
var Jakarta = Place{Lat: -6.2, Lng: 106.8, Address: "Jakarta, Indonesia"}

// GeocodeServer is an httptest server speaking the geocoding JSON format.
// Queries without a scripted answer get an empty result list.
type GeocodeServer struct {
	*httptest.Server

	mu       sync.Mutex
	places   map[string][]Place
	gates    map[string]chan struct{}
	failures map[string]int
	requests []Request
}

// Request records one call received by the fake.
type Request struct {
	Address string
	Key     string
}

// NewGeocodeServer starts a fake provider closed on test cleanup.
func NewGeocodeServer(t *testing.T) *GeocodeServer {
	t.Helper()

	s := &GeocodeServer{
		places:   make(map[string][]Place),
		gates:    make(map[string]chan struct{}),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Answer scripts the candidates returned for query.
func (s *GeocodeServer) Answer(query string, places ...Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places[query] = append([]Place(nil), places...)
}

// Fail makes the provider answer query with the given HTTP status.
func (s *GeocodeServer) Fail(query string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[query] = status
}

// Hold blocks responses for query until the returned release func is called.
func (s *GeocodeServer) Hold(query string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gates[query] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Requests returns the calls received so far.
func (s *GeocodeServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *GeocodeServer) serve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("address")

	s.mu.Lock()
	s.requests = append(s.requests, Request{Address: query, Key: r.URL.Query().Get("key")})
	gate := s.gates[query]
	places := s.places[query]
	status := s.failures[query]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	type location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	type result struct {
		Geometry struct {
			Location location `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	}
	payload := struct {
		Results []result `json:"results"`
		Status  string   `json:"status"`
	}{Results: []result{}, Status: "ZERO_RESULTS"}

	for _, p := range places {
		var res result
		res.Geometry.Location = location{Lat: p.Lat, Lng: p.Lng}
		res.FormattedAddress = p.Address
		payload.Results = append(payload.Results, res)
	}
	if len(payload.Results) > 0 {
		payload.Status = "OK"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
