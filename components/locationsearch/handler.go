package locationsearch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
	"github.com/dynamits/go-delivery-order/pkg/location"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Result is the success payload.
type Result struct {
	Side      geo.Side `json:"side"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Address   string   `json:"address"`
}

// Failure is the error payload.
type Failure struct {
	Side    string       `json:"side,omitempty"`
	Kind    geocode.Kind `json:"kind"`
	Message string       `json:"message"`
}

// KindBadRequest marks a request rejected before any lookup.
const KindBadRequest geocode.Kind = "bad_request"

type resultResponse struct {
	Data Result `json:"data"`
}

type failureResponse struct {
	Error Failure `json:"error"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a net/http handler from a pre-constructed Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		if err := r.ParseForm(); err != nil {
			writeFailure(w, http.StatusBadRequest, Failure{Kind: KindBadRequest, Message: "malformed request body"})
			return
		}

		rawSide := r.Form.Get(opts.SideParam)
		side, err := geo.ParseSide(rawSide)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, Failure{Side: rawSide, Kind: KindBadRequest, Message: err.Error()})
			return
		}

		if opts.Searcher == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		searcher, err := opts.Searcher(r)
		if err != nil {
			writeStatusError(w, err, http.StatusInternalServerError)
			return
		}

		query := r.Form.Get(opts.SearchParam)
		loc, err := searcher.Resolve(r.Context(), query, side)
		if err != nil {
			code, failure := classify(side, err)
			writeFailure(w, code, failure)
			return
		}

		writeJSON(w, http.StatusOK, resultResponse{Data: Result{
			Side:      side,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Address:   loc.Address,
		}})
	})
}

func classify(side geo.Side, err error) (int, Failure) {
	var rerr *location.ResolveError
	switch {
	case errors.As(err, &rerr) && rerr.Kind == geocode.KindNotFound:
		return http.StatusNotFound, Failure{Side: side.String(), Kind: geocode.KindNotFound, Message: rerr.Message}
	case errors.As(err, &rerr):
		return http.StatusBadGateway, Failure{Side: side.String(), Kind: geocode.KindFailure, Message: rerr.Message}
	case errors.Is(err, location.ErrInvalidSide):
		return http.StatusBadRequest, Failure{Side: side.String(), Kind: KindBadRequest, Message: err.Error()}
	case geocode.IsNotFound(err):
		return http.StatusNotFound, Failure{Side: side.String(), Kind: geocode.KindNotFound, Message: location.NotFoundMessage(side)}
	default:
		return http.StatusBadGateway, Failure{Side: side.String(), Kind: geocode.KindFailure, Message: location.MessageFailure}
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeFailure(w http.ResponseWriter, code int, failure Failure) {
	writeJSON(w, code, failureResponse{Error: failure})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	writeStatusError(w, err, http.StatusForbidden)
}

func writeStatusError(w http.ResponseWriter, err error, fallback int) {
	if w == nil {
		return
	}
	code := fallback
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = fallback
		}
	}
	http.Error(w, http.StatusText(code), code)
}
