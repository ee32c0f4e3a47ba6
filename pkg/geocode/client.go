package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

const maxBodyBytes = 4 << 20

// Geocoder turns free text into a resolved location.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geo.ResolvedLocation, error)
}

// GeocoderFunc adapts a function to Geocoder.
type GeocoderFunc func(ctx context.Context, query string) (geo.ResolvedLocation, error)

func (fn GeocoderFunc) Geocode(ctx context.Context, query string) (geo.ResolvedLocation, error) {
	return fn(ctx, query)
}

// Response mirrors the subset of the provider payload the client reads.
type Response struct {
	Results      []Result `json:"results"`
	Status       string   `json:"status,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

type Result struct {
	Geometry         Geometry `json:"geometry"`
	FormattedAddress string   `json:"formatted_address"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client calls the geocoding endpoint.
type Client struct {
	opts   Options
	http   *http.Client
	target *url.URL
}

var _ Geocoder = (*Client)(nil)

// New builds a client. The transport is wrapped for tracing.
func New(fns ...OptionFn) (*Client, error) {
	opts := NewOptions(fns...)
	target, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse base url: %w", err)
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	httpClient := *base
	httpClient.Transport = otelhttp.NewTransport(transport)
	if opts.Timeout > 0 {
		httpClient.Timeout = opts.Timeout
	}

	return &Client{opts: opts, http: &httpClient, target: target}, nil
}

// Geocode issues one lookup for query. The query is sent verbatim, empty or not.
func (c *Client) Geocode(ctx context.Context, query string) (geo.ResolvedLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(query), nil)
	if err != nil {
		return geo.ResolvedLocation{}, &Error{Kind: KindFailure, Query: query, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return geo.ResolvedLocation{}, &Error{Kind: KindFailure, Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return geo.ResolvedLocation{}, &Error{
			Kind:   KindFailure,
			Query:  query,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var payload Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return geo.ResolvedLocation{}, &Error{
			Kind:   KindFailure,
			Query:  query,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}

	return FirstResult(query, payload)
}

// FirstResult extracts the first candidate of a decoded response.
func FirstResult(query string, payload Response) (geo.ResolvedLocation, error) {
	if len(payload.Results) == 0 {
		return geo.ResolvedLocation{}, &Error{Kind: KindNotFound, Query: query, Err: ErrNotFound}
	}
	first := payload.Results[0]
	return geo.ResolvedLocation{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
		Address:   strings.TrimSpace(first.FormattedAddress),
	}, nil
}

func (c *Client) requestURL(query string) string {
	u := *c.target
	q := u.Query()
	q.Set("address", query)
	if c.opts.APIKey != "" {
		q.Set("key", c.opts.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
