package locationsearch

import "net/http"

// Component is a configured search endpoint ready to mount.
type Component struct {
	opts    Options
	handler http.Handler
}

// New builds the component once; Handler and RegisterRoutes share the result.
func New(fns ...OptionFn) *Component {
	opts := NewOptions(fns...)
	return &Component{opts: opts, handler: HandlerWithOptions(opts)}
}

// Options returns a copy of the configuration.
func (c *Component) Options() Options {
	return c.opts
}

func (c *Component) Handler() http.Handler {
	return c.handler
}

// MountPath is the pattern RegisterRoutes uses under basePath.
func (c *Component) MountPath(basePath string) string {
	return joinRoute(basePath, c.opts.RoutePath)
}

// RegisterRoutes mounts the component's handler and returns the pattern.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", ErrMissingMux
	}
	pattern := c.MountPath(basePath)
	mux.Handle(pattern, c.handler)
	return pattern, nil
}
