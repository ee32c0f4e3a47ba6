package locationsearch

import (
	"context"
	"net/http"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

type GuardFunc func(r *http.Request) error

// Searcher resolves query for side.
type Searcher interface {
	Resolve(ctx context.Context, query string, side geo.Side) (geo.ResolvedLocation, error)
}

// SearcherFunc picks the Searcher for a request.
type SearcherFunc func(r *http.Request) (Searcher, error)

type Options struct {
	RoutePath   string
	SearchParam string
	SideParam   string
	Guard       GuardFunc

	Searcher SearcherFunc
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:   "/api/locations/search",
		SearchParam: "q",
		SideParam:   "side",
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
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/locations/search"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.SideParam == "" {
		opts.SideParam = "side"
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

func WithSideParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SideParam = name
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithSearcher uses the same Searcher for every request.
func WithSearcher(s Searcher) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if s == nil {
			o.Searcher = nil
			return
		}
		o.Searcher = func(*http.Request) (Searcher, error) { return s, nil }
	}
}

// WithSearcherFunc picks the Searcher per request, e.g. from a session cookie.
func WithSearcherFunc(fn SearcherFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Searcher = fn
	}
}
