package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/dynamits/go-delivery-order/pkg/order"
	"github.com/dynamits/go-delivery-order/pkg/render"
	"github.com/dynamits/go-delivery-order/pkg/session"
)

const (
	statusOK      = "ok"
	statusInvalid = "invalid"
	statusError   = "error"

	// formErrorsKey holds messages that belong to no single field.
	formErrorsKey = "_form"

	maxBodyBytes = 64 << 10
)

type envelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type validateResult struct {
	Valid bool `json:"valid"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	sess := mustSession(r)
	s.renderPage(w, r, http.StatusOK, s.pageData(r, sess))
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	doc, err := s.spec.Document()
	if err != nil {
		s.logger.LogAttrs(r.Context(), slog.LevelError, "encode api document failed",
			slog.String("action", "openapi_failed"),
			slog.String("error", err.Error()),
		)
		writeEnvelope(w, http.StatusInternalServerError, envelope{Status: statusError, Message: "api document unavailable"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	sess := mustSession(r)
	writeEnvelope(w, http.StatusOK, envelope{Status: statusOK, Data: sess.Locations.Snapshot()})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	sess := mustSession(r)
	writeEnvelope(w, http.StatusOK, envelope{Status: statusOK, Data: sess.View.Current()})
}

// handleDraft applies user edits. The patch is rejected as a whole when it
// names an unknown field.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, http.MethodPatch)
		return
	}
	values, err := decodeValues(w, r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Status: statusError, Message: err.Error()})
		return
	}
	if unknown := unknownFields(values); len(unknown) > 0 {
		writeEnvelope(w, http.StatusBadRequest, envelope{
			Status:  statusError,
			Message: order.ErrUnknownField.Error(),
			Errors:  unknown,
		})
		return
	}

	sess := mustSession(r)
	sess.Form.SetValues(values)
	writeEnvelope(w, http.StatusOK, envelope{Status: statusOK, Data: sess.Form.Draft()})
}

// handleValidate checks the posted fields one by one, as a form does on blur.
// An empty body validates the session's whole draft.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	values, err := decodeValues(w, r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Status: statusError, Message: err.Error()})
		return
	}
	if unknown := unknownFields(values); len(unknown) > 0 {
		writeEnvelope(w, http.StatusBadRequest, envelope{
			Status:  statusError,
			Message: order.ErrUnknownField.Error(),
			Errors:  unknown,
		})
		return
	}

	var fe order.FieldErrors
	if len(values) == 0 {
		fe = order.Validate(mustSession(r).Form.Draft())
	} else {
		for _, name := range order.Fields {
			value, ok := values[name]
			if !ok {
				continue
			}
			msgs, err := order.ValidateField(name, value)
			if err != nil {
				writeEnvelope(w, http.StatusBadRequest, envelope{Status: statusError, Message: err.Error()})
				return
			}
			for _, msg := range msgs {
				fe = fe.Add(name, msg)
			}
		}
	}

	if len(fe) == 0 {
		writeEnvelope(w, http.StatusOK, envelope{Status: statusOK, Data: validateResult{Valid: true}})
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{
		Status: statusInvalid,
		Data:   validateResult{Valid: false},
		Errors: s.localizeErrors(localeFor(r), fe),
	})
}

// handleOrders submits the session's form. JSON bodies get JSON envelopes;
// browser form posts get the page back.
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if isFormPost(r) {
		s.submitForm(w, r)
		return
	}

	values, err := decodeValues(w, r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Status: statusError, Message: err.Error()})
		return
	}
	sess := mustSession(r)
	sess.Form.SetValues(values)

	sub, err := sess.Submit(r.Context(), s.sink)
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		writeEnvelope(w, http.StatusUnprocessableEntity, envelope{
			Status:  statusInvalid,
			Message: "order has invalid fields",
			Errors:  s.localizeErrors(localeFor(r), verr.Fields),
		})
	case err != nil:
		s.submitFailed(r, err)
		writeEnvelope(w, http.StatusInternalServerError, envelope{Status: statusError, Message: "order could not be submitted"})
	default:
		writeEnvelope(w, http.StatusCreated, envelope{Status: statusOK, Message: "order submitted", Data: sub})
	}
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	values := make(map[string]string, len(order.Fields))
	for _, name := range order.Fields {
		if _, ok := r.PostForm[name]; ok {
			values[name] = r.PostForm.Get(name)
		}
	}

	sess := mustSession(r)
	sess.Form.SetValues(values)
	draft := sess.Form.Draft()

	sub, err := sess.Submit(r.Context(), s.sink)
	data := s.pageData(r, sess)
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		mapping := render.MapFieldErrors(order.Fields, map[string][]string(verr.Fields))
		data.Draft = draft
		data.Errors = order.FieldErrors(mapping.Fields)
		data.FormErrors = render.MergeFormErrors(data.FormErrors, mapping.Form...)
		s.renderPage(w, r, http.StatusUnprocessableEntity, data)
	case err != nil:
		s.submitFailed(r, err)
		data.Draft = draft
		data.FormErrors = render.MergeFormErrors(data.FormErrors, "Order could not be submitted. Please try again.")
		s.renderPage(w, r, http.StatusInternalServerError, data)
	default:
		data.Submitted = &sub
		s.renderPage(w, r, http.StatusCreated, data)
	}
}

func (s *Server) submitFailed(r *http.Request, err error) {
	s.logger.LogAttrs(r.Context(), slog.LevelError, "order submission failed",
		slog.String("action", "order_failed"),
		slog.String("error", err.Error()),
	)
}

func (s *Server) pageData(r *http.Request, sess *session.Session) render.PageData {
	return render.PageData{
		Locale:    localeFor(r),
		Fields:    s.spec.Fields(),
		Draft:     sess.Form.Draft(),
		Locations: sess.Locations.Snapshot(),
		View:      sess.View.Current(),
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, code int, data render.PageData) {
	var buf bytes.Buffer
	if err := s.page.RenderOrderPage(&buf, data); err != nil {
		s.logger.LogAttrs(r.Context(), slog.LevelError, "render order page failed",
			slog.String("action", "render_failed"),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = buf.WriteTo(w)
}

func (s *Server) localizeErrors(locale string, fe order.FieldErrors) map[string][]string {
	mapping := render.MapFieldErrors(order.Fields, map[string][]string(fe)).Localize(locale, s.translator, nil)
	out := make(map[string][]string, len(mapping.Fields)+1)
	for field, msgs := range mapping.Fields {
		out[field] = msgs
	}
	if len(mapping.Form) > 0 {
		out[formErrorsKey] = mapping.Form
	}
	return out
}

func mustSession(r *http.Request) *session.Session {
	sess, ok := sessionFrom(r.Context())
	if !ok {
		panic("server: handler mounted without session middleware")
	}
	return sess
}

// decodeValues reads a flat JSON object of field values. An empty body is an
// empty object.
func decodeValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	values := make(map[string]string)
	if r.Body == nil {
		return values, nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		return nil, fmt.Errorf("malformed JSON body: %w", err)
	}
	return values, nil
}

func unknownFields(values map[string]string) map[string][]string {
	known := make(map[string]struct{}, len(order.Fields))
	for _, name := range order.Fields {
		known[name] = struct{}{}
	}
	var out map[string][]string
	for name := range values {
		if _, ok := known[name]; ok {
			continue
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[name] = []string{"unknown field"}
	}
	return out
}

func isFormPost(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded"
}

func writeEnvelope(w http.ResponseWriter, code int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
