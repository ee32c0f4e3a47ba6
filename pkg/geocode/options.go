package geocode

import (
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the Google Geocoding JSON endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	// Timeout bounds a single lookup. Zero means no limit.
	Timeout time.Duration
}

// OptionFn mutates Options.
type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		BaseURL: DefaultBaseURL,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	opts.BaseURL = strings.TrimSpace(opts.BaseURL)
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}
	return opts
}

func WithBaseURL(url string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BaseURL = url
	}
}

func WithAPIKey(key string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.APIKey = key
	}
}

func WithHTTPClient(client *http.Client) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.HTTPClient = client
	}
}

func WithTimeout(d time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Timeout = d
	}
}
