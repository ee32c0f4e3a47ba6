package locationsearch

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// ErrMissingMux is returned when routes are registered on a nil mux.
var ErrMissingMux = errors.New("locationsearch: missing mux")

// Mux is satisfied by *http.ServeMux and by wrappers that decorate handlers
// before mounting them.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath is the pattern the search handler is mounted at under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	return joinRoute(basePath, NewOptions(fns...).RoutePath)
}

// RegisterRoutes mounts the search handler under basePath and returns the
// pattern used.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions is RegisterRoutes for a pre-built Options value.
// Empty fields fall back to the defaults.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", ErrMissingMux
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := joinRoute(basePath, opts.RoutePath)
	mux.Handle(pattern, HandlerWithOptions(opts))
	return pattern, nil
}

// joinRoute treats both parts as absolute URL paths, so "v1" and "/v1/" mount
// the same way.
func joinRoute(basePath, routePath string) string {
	base := "/" + strings.Trim(strings.TrimSpace(basePath), "/")
	route := strings.Trim(strings.TrimSpace(routePath), "/")
	return path.Join(base, route)
}
