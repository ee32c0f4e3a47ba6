package render

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/dynamits/go-delivery-order/pkg/formspec"
	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/location"
	"github.com/dynamits/go-delivery-order/pkg/mapview"
	"github.com/dynamits/go-delivery-order/pkg/order"
)

//go:embed templates/*.html
var templateFS embed.FS

const orderPageTemplate = "order.html"

// PageOptions configures a Page.
type PageOptions struct {
	Templates  fs.FS
	Translator Translator
	OnMissing  MissingTranslationHandler
	// MapsScriptURL, when set, is loaded by the page to draw the map.
	MapsScriptURL string
}

// PageOption mutates PageOptions.
type PageOption func(*PageOptions)

// WithTemplates replaces the embedded templates.
func WithTemplates(files fs.FS) PageOption {
	return func(o *PageOptions) {
		if o == nil || files == nil {
			return
		}
		o.Templates = files
	}
}

// WithTranslator replaces DefaultCatalog.
func WithTranslator(t Translator) PageOption {
	return func(o *PageOptions) {
		if o == nil {
			return
		}
		o.Translator = t
	}
}

// WithOnMissing sets the handler for untranslated keys.
func WithOnMissing(fn MissingTranslationHandler) PageOption {
	return func(o *PageOptions) {
		if o == nil {
			return
		}
		o.OnMissing = fn
	}
}

// WithMapsScriptURL sets the map widget script.
func WithMapsScriptURL(url string) PageOption {
	return func(o *PageOptions) {
		if o == nil {
			return
		}
		o.MapsScriptURL = url
	}
}

// Page renders the order page from a pongo2 template set.
type Page struct {
	opts PageOptions
	set  *pongo2.TemplateSet

	mu   sync.Mutex
	tmpl *pongo2.Template
}

// NewPage builds a page renderer over the embedded templates.
func NewPage(fns ...PageOption) (*Page, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: embedded templates: %w", err)
	}
	opts := PageOptions{
		Templates:  sub,
		Translator: DefaultCatalog(),
		OnMissing:  missingTranslationDefault,
	}
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.OnMissing == nil {
		opts.OnMissing = missingTranslationDefault
	}
	return &Page{
		opts: opts,
		set:  pongo2.NewSet("delivery-order", pongo2.NewFSLoader(opts.Templates)),
	}, nil
}

// PageData is everything the order page shows.
type PageData struct {
	Locale     string
	Fields     []formspec.Field
	Draft      order.Draft
	Errors     order.FieldErrors
	FormErrors []string
	Locations  location.Snapshot
	// SideErrors overrides the state's inline messages, e.g. with a localised
	// ResolveError.
	SideErrors map[geo.Side]string
	View       mapview.View
	Submitted  *order.Submission
}

type fieldView struct {
	Name        string
	Label       string
	Placeholder string
	Value       string
	Error       string
	Required    bool
	MinLength   int
	Searchable  bool
	Side        string
	SideError   string
	SideStatus  string
}

// RenderOrderPage writes the page to w.
func (p *Page) RenderOrderPage(w io.Writer, data PageData) error {
	if p == nil {
		return errors.New("render: page is nil")
	}
	tmpl, err := p.template()
	if err != nil {
		return err
	}
	ctx, err := p.context(data)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("render: execute %s: %w", orderPageTemplate, err)
	}
	return nil
}

func (p *Page) template() (*pongo2.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tmpl != nil {
		return p.tmpl, nil
	}
	tmpl, err := p.set.FromFile(orderPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: load %s: %w", orderPageTemplate, err)
	}
	p.tmpl = tmpl
	return tmpl, nil
}

func (p *Page) context(data PageData) (pongo2.Context, error) {
	locale := data.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	t, onMissing := p.opts.Translator, p.opts.OnMissing
	tr := func(key, fallback string) string {
		return translate(locale, key, fallback, t, onMissing)
	}

	values := data.Draft.Values()
	fields := make([]fieldView, 0, len(data.Fields))
	for _, f := range data.Fields {
		fv := fieldView{
			Name:        f.Name,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Value:       values[f.Name],
			Required:    f.Required,
			MinLength:   f.MinLength,
			Searchable:  f.Searchable,
		}
		if msg := data.Errors.First(f.Name); msg != "" {
			fv.Error = TranslateMessage(locale, msg, t, onMissing)
		}
		if f.Searchable {
			side := data.Locations.Side(f.Side)
			fv.Side = f.Side.String()
			fv.SideStatus = side.Status.String()
			fv.SideError = side.Error
			if override, ok := data.SideErrors[f.Side]; ok {
				fv.SideError = override
			}
		}
		fields = append(fields, fv)
	}

	formErrors := make([]string, 0, len(data.FormErrors))
	for _, msg := range normalizeMessages(data.FormErrors) {
		formErrors = append(formErrors, TranslateMessage(locale, msg, t, onMissing))
	}

	view, err := json.Marshal(data.View)
	if err != nil {
		return nil, fmt.Errorf("render: encode view: %w", err)
	}

	ctx := pongo2.Context{
		"locale":          locale,
		"title":           tr(KeyPageTitle, "Create Delivery Order"),
		"submit_label":    tr(KeySubmit, "Submit Order"),
		"search_label":    tr(KeySearch, "Search"),
		"display_label":   tr(KeyDisplayHint, "Last resolved location"),
		"fields":          fields,
		"form_errors":     formErrors,
		"display":         data.Locations.Display,
		"view_json":       string(view),
		"maps_script_url": p.opts.MapsScriptURL,
	}
	if data.Submitted != nil {
		ctx["submitted"] = tr(KeySubmitted, "Order submitted.")
	}
	return ctx, nil
}
