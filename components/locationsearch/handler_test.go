package locationsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
	"github.com/dynamits/go-delivery-order/pkg/location"
	"github.com/dynamits/go-delivery-order/pkg/testsupport"
)

type stubSearcher struct {
	loc   geo.ResolvedLocation
	err   error
	query string
	side  geo.Side
	calls int
}

func (s *stubSearcher) Resolve(_ context.Context, query string, side geo.Side) (geo.ResolvedLocation, error) {
	s.calls++
	s.query = query
	s.side = side
	return s.loc, s.err
}

type errorPayload struct {
	Error Failure `json:"error"`
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ResolvesPickup(t *testing.T) {
	s := &stubSearcher{loc: geo.ResolvedLocation{Latitude: -6.2, Longitude: 106.8, Address: "Jakarta, Indonesia"}}
	h := NewHandler(WithSearcher(s))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/locations/search?side=pickup&q=+Jakarta+", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}

	var payload struct {
		Data Result `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := Result{Side: geo.Pickup, Latitude: -6.2, Longitude: 106.8, Address: "Jakarta, Indonesia"}
	if payload.Data != want {
		t.Fatalf("got %#v, want %#v", payload.Data, want)
	}
	if s.query != " Jakarta " || s.side != geo.Pickup {
		t.Fatalf("query should reach the searcher as typed, got %q %v", s.query, s.side)
	}
}

func TestHandler_PostFormBody(t *testing.T) {
	s := &stubSearcher{loc: geo.ResolvedLocation{Address: "x"}}
	h := NewHandler(WithSearcher(s), WithSearchParam("query"))

	body := url.Values{"side": {"destination"}, "query": {"Bandung"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/api/locations/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if s.query != "Bandung" || s.side != geo.Destination {
		t.Fatalf("searcher got %q %v", s.query, s.side)
	}
}

func TestHandler_StatusCodes(t *testing.T) {
	notFound := &location.ResolveError{
		Side:    geo.Destination,
		Kind:    geocode.KindNotFound,
		Message: "Destination location not found, please try again.",
		Err:     geocode.ErrNotFound,
	}
	failure := &location.ResolveError{
		Side:    geo.Pickup,
		Kind:    geocode.KindFailure,
		Message: location.MessageFailure,
		Err:     errors.New("boom"),
	}

	cases := []struct {
		name     string
		target   string
		err      error
		wantCode int
		wantKind geocode.Kind
		wantMsg  string
	}{
		{"not found", "/?side=destination&q=x", notFound, http.StatusNotFound, geocode.KindNotFound, notFound.Message},
		{"provider failure", "/?side=pickup&q=x", failure, http.StatusBadGateway, geocode.KindFailure, location.MessageFailure},
		{"raw error", "/?side=pickup&q=x", errors.New("dial tcp"), http.StatusBadGateway, geocode.KindFailure, location.MessageFailure},
		{"unknown side", "/?side=middle&q=x", nil, http.StatusBadRequest, KindBadRequest, ""},
		{"missing side", "/?q=x", nil, http.StatusBadRequest, KindBadRequest, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(WithSearcher(&stubSearcher{err: tc.err}))
			rec := serve(h, httptest.NewRequest(http.MethodGet, tc.target, nil))
			if rec.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, rec.Code)
			}
			var payload errorPayload
			if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if payload.Error.Kind != tc.wantKind {
				t.Fatalf("kind %q, want %q", payload.Error.Kind, tc.wantKind)
			}
			if tc.wantMsg != "" && payload.Error.Message != tc.wantMsg {
				t.Fatalf("message %q, want %q", payload.Error.Message, tc.wantMsg)
			}
		})
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(WithSearcher(&stubSearcher{}))
	rec := serve(h, httptest.NewRequest(http.MethodDelete, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestHandler_GuardStatus(t *testing.T) {
	s := &stubSearcher{}
	h := NewHandler(
		WithSearcher(s),
		WithGuard(func(*http.Request) error {
			return StatusError{Code: http.StatusUnauthorized, Err: errors.New("no session")}
		}),
	)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/?side=pickup&q=x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if s.calls != 0 {
		t.Fatalf("searcher called despite guard")
	}
}

func TestHandler_SearcherLookupError(t *testing.T) {
	h := NewHandler(WithSearcherFunc(func(*http.Request) (Searcher, error) {
		return nil, StatusError{Code: http.StatusNotFound}
	}))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/?side=pickup&q=x", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_WithResolverAgainstFakeProvider(t *testing.T) {
	srv := testsupport.NewGeocodeServer(t)
	srv.Answer("Jakarta", testsupport.Jakarta)
	client, err := geocode.New(geocode.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("geocoder: %v", err)
	}
	resolver := location.NewResolver(client, nil)
	h := NewHandler(WithSearcher(resolver))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/?side=pickup&q=Jakarta", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/?side=destination&q=Atlantis", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if resolver.State().Point(geo.Destination) != geo.DefaultPoint {
		t.Fatalf("destination moved")
	}
}
