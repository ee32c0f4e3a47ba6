// Package prompt walks the delivery order form in a terminal: one prompt per
// field, a location search for the two address fields, then a confirmation
// before the order is submitted.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dynamits/go-delivery-order/pkg/formspec"
	"github.com/dynamits/go-delivery-order/pkg/location"
	"github.com/dynamits/go-delivery-order/pkg/order"
	"github.com/dynamits/go-delivery-order/pkg/render"
	"github.com/dynamits/go-delivery-order/pkg/session"
)

// Option configures a Session.
type Option func(*Session)

// WithLocale selects the message locale.
func WithLocale(locale string) Option {
	return func(s *Session) {
		if locale != "" {
			s.locale = locale
		}
	}
}

// WithTranslator replaces render.DefaultCatalog.
func WithTranslator(t render.Translator) Option {
	return func(s *Session) {
		s.translator = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session drives one order through a PromptDriver.
type Session struct {
	driver     PromptDriver
	workspace  *session.Session
	fields     []formspec.Field
	sink       order.Sink
	locale     string
	translator render.Translator
	logger     *slog.Logger
}

// NewSession prompts for fields in order and submits into sink.
func NewSession(driver PromptDriver, workspace *session.Session, fields []formspec.Field, sink order.Sink, opts ...Option) *Session {
	s := &Session{
		driver:     driver,
		workspace:  workspace,
		fields:     fields,
		sink:       sink,
		locale:     render.DefaultLocale,
		translator: render.DefaultCatalog(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run prompts every field, confirms and submits. Ctrl+C returns ErrAborted;
// answering no at the confirmation returns ErrDeclined and leaves the form as
// it is.
func (s *Session) Run(ctx context.Context) (order.Submission, error) {
	if s.driver == nil || s.workspace == nil {
		return order.Submission{}, errors.New("prompt: session is not configured")
	}

	for _, field := range s.fields {
		var err error
		if field.Searchable {
			err = s.askLocation(ctx, field)
		} else {
			err = s.askField(ctx, field)
		}
		if err != nil {
			return order.Submission{}, err
		}
	}

	if err := s.driver.Say(ctx, s.summary()); err != nil {
		return order.Submission{}, err
	}
	ok, err := s.driver.Confirm(ctx, Confirmation{Message: render.Translate(s.locale, render.KeySubmit, "Submit Order", s.translator, nil) + "?", Default: true})
	if err != nil {
		return order.Submission{}, err
	}
	if !ok {
		return order.Submission{}, ErrDeclined
	}

	sub, err := s.workspace.Submit(ctx, s.sink)
	if err != nil {
		var verr *order.ValidationError
		if errors.As(err, &verr) {
			for _, name := range verr.Fields.Fields() {
				msg := render.TranslateMessage(s.locale, verr.Fields.First(name), s.translator, nil)
				_ = s.driver.Say(ctx, name+": "+msg)
			}
		}
		return order.Submission{}, err
	}
	_ = s.driver.Say(ctx, render.Translate(s.locale, render.KeySubmitted, "Order submitted.", s.translator, nil))
	return sub, nil
}

func (s *Session) askField(ctx context.Context, field formspec.Field) error {
	current, _ := s.workspace.Form.Draft().Get(field.Name)
	value, err := s.driver.Ask(ctx, Question{
		Message:  field.Label,
		Default:  current,
		Help:     field.Placeholder,
		Validate: s.validator(field.Name),
	})
	if err != nil {
		return err
	}
	return s.workspace.Form.Set(field.Name, value)
}

// askLocation repeats the search until the side resolves.
func (s *Session) askLocation(ctx context.Context, field formspec.Field) error {
	for {
		current, _ := s.workspace.Form.Draft().Get(field.Name)
		query, err := s.driver.Ask(ctx, Question{
			Message: field.Label,
			Default: current,
			Help:    field.Placeholder,
		})
		if err != nil {
			return err
		}
		if err := s.workspace.Form.Set(field.Name, query); err != nil {
			return err
		}

		loc, err := s.workspace.Resolve(ctx, query, field.Side)
		if err == nil {
			msg := fmt.Sprintf("%s (%.6f, %.6f)", loc.Address, loc.Latitude, loc.Longitude)
			if err := s.driver.Say(ctx, msg); err != nil {
				return err
			}
			return nil
		}

		var rerr *location.ResolveError
		if !errors.As(err, &rerr) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err := s.driver.Say(ctx, render.TranslateResolveError(s.locale, rerr, s.translator, nil)); err != nil {
			return err
		}
	}
}

func (s *Session) validator(field string) func(string) error {
	return func(value string) error {
		msgs, err := order.ValidateField(field, value)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}
		return errors.New(render.TranslateMessage(s.locale, msgs[0], s.translator, nil))
	}
}

func (s *Session) summary() string {
	values := s.workspace.Form.Draft().Values()
	var b strings.Builder
	for _, field := range s.fields {
		fmt.Fprintf(&b, "%s: %s\n", field.Label, values[field.Name])
	}
	return strings.TrimRight(b.String(), "\n")
}
