package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names under templates/
const (
	TemplateReceipt = "receipt.html"
	TemplatePermit  = "permit.html"
)

// CurrencySymbol prefixes formatted money
const CurrencySymbol = "₱"

// TemplateEngine executes the document templates with formatting helpers
type TemplateEngine struct {
	templates *template.Template
	printer   *message.Printer
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*templateOptions)

type templateOptions struct {
	source fs.FS
	lang   language.Tag
}

// WithTemplateFS replaces the embedded templates, e.g. with a directory of
// institution-specific layouts
func WithTemplateFS(fsys fs.FS) TemplateEngineOption {
	return func(o *templateOptions) { o.source = fsys }
}

// WithLanguage sets the locale used for number grouping
func WithLanguage(tag language.Tag) TemplateEngineOption {
	return func(o *templateOptions) { o.lang = tag }
}

// NewTemplateEngine parses the document templates. It panics if the
// embedded templates are malformed; custom sources return the error.
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e, err := NewTemplateEngineE(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// NewTemplateEngineE is NewTemplateEngine returning parse errors
func NewTemplateEngineE(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	o := templateOptions{lang: language.English}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, err
		}
		o.source = sub
	}

	e := &TemplateEngine{printer: message.NewPrinter(o.lang)}
	tmpl, err := template.New("documents").Funcs(e.funcMap()).ParseFS(o.source, "*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse document templates", err)
	}
	e.templates = tmpl
	return e, nil
}

func (e *TemplateEngine) funcMap() template.FuncMap {
	return template.FuncMap{
		"formatMoney":    e.FormatMoney,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"upper":          strings.ToUpper,
		"title":          func(s string) string { return cases.Title(language.English).String(s) },
		"inc":            func(i int) int { return i + 1 },
	}
}

// Execute renders the named template to HTML
func (e *TemplateEngine) Execute(name string, data any) (string, error) {
	if e.templates.Lookup(name) == nil {
		return "", NewRenderError(ErrCodeTemplateNotFound, "template not found: "+name, nil)
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

// FormatMoney renders an amount with the currency symbol and grouped
// thousands, e.g. ₱12,345.60
func (e *TemplateEngine) FormatMoney(m valueobject.Money) string {
	cents := m.Cents()
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, CurrencySymbol, e.printer.Sprintf("%d", cents/100), cents%100)
}

// formatDate formats a time value as "January 2, 2006"
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// formatDateTime formats a time value as "2006-01-02 15:04"
func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
