// Package ui holds the small markup helpers shared by the page components.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Esc escapes text for use in HTML content and quoted attribute values.
func Esc(s string) string {
	return templ.EscapeString(s)
}

// Markup wraps already-escaped HTML as a component.
func Markup(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}

// Render writes a component into b.
func Render(ctx context.Context, b *strings.Builder, c templ.Component) error {
	if c == nil {
		return nil
	}
	return c.Render(ctx, b)
}

type Option struct {
	Value string
	Label string
}

func Options(values ...string) []Option {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: v})
	}
	return opts
}

// Input is one labelled form control with its inline error.
type Input struct {
	Label       string
	Name        string
	Type        string
	Value       string
	Placeholder string
	Error       string
	Required    bool
	Extra       string // raw attributes, e.g. `min="0"`
}

func (in Input) HTML() string {
	typ := in.Type
	if typ == "" {
		typ = "text"
	}
	var b strings.Builder
	b.WriteString(`<label class="block space-y-1">`)
	fmt.Fprintf(&b, `<span class="text-sm font-medium">%s</span>`, Esc(in.Label))
	fmt.Fprintf(&b, `<input class="w-full rounded border px-3 py-2%s" type="%s" name="%s" id="%s" value="%s"`,
		errorClass(in.Error), Esc(typ), Esc(in.Name), Esc(in.Name), Esc(in.Value))
	if in.Placeholder != "" {
		fmt.Fprintf(&b, ` placeholder="%s"`, Esc(in.Placeholder))
	}
	if in.Required {
		b.WriteString(` required`)
	}
	if in.Extra != "" {
		b.WriteString(" " + in.Extra)
	}
	b.WriteString(`>`)
	b.WriteString(FieldError(in.Error))
	b.WriteString(`</label>`)
	return b.String()
}

type Select struct {
	Label   string
	Name    string
	Value   string
	Options []Option
	Blank   string // first, empty option; omitted when ""
	Error   string
}

func (s Select) HTML() string {
	var b strings.Builder
	b.WriteString(`<label class="block space-y-1">`)
	fmt.Fprintf(&b, `<span class="text-sm font-medium">%s</span>`, Esc(s.Label))
	fmt.Fprintf(&b, `<select class="w-full rounded border px-3 py-2%s" name="%s" id="%s">`,
		errorClass(s.Error), Esc(s.Name), Esc(s.Name))
	if s.Blank != "" {
		fmt.Fprintf(&b, `<option value="">%s</option>`, Esc(s.Blank))
	}
	for _, opt := range s.Options {
		selected := ""
		if opt.Value == s.Value {
			selected = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, Esc(opt.Value), selected, Esc(opt.Label))
	}
	b.WriteString(`</select>`)
	b.WriteString(FieldError(s.Error))
	b.WriteString(`</label>`)
	return b.String()
}

func FieldError(msg string) string {
	if msg == "" {
		return ""
	}
	return `<p class="text-sm text-red-600" role="alert">` + Esc(msg) + `</p>`
}

func errorClass(msg string) string {
	if msg == "" {
		return ""
	}
	return " border-red-500"
}

// Alert is a banner at the top of a form.
func Alert(msg string) string {
	if msg == "" {
		return ""
	}
	return `<div class="rounded border border-red-300 bg-red-50 p-3 text-sm text-red-700" role="alert">` + Esc(msg) + `</div>`
}

// ErrorPanel replaces a page whose data could not be loaded. Its action
// logs the user out.
func ErrorPanel(message string) templ.Component {
	if message == "" {
		message = "No se pudieron cargar los datos."
	}
	return Markup(`<section class="mx-auto max-w-md rounded border border-red-300 bg-red-50 p-6 text-center space-y-4" id="error-panel">` +
		`<h2 class="text-lg font-semibold text-red-700">Ocurrió un error</h2>` +
		`<p class="text-sm text-red-700">` + Esc(message) + `</p>` +
		`<form method="post" action="/logout"><button class="rounded bg-red-600 px-4 py-2 text-white" type="submit">Volver al login</button></form>` +
		`</section>`)
}

// Money prints a USD amount the way the event pages do.
func Money(v int) string {
	return fmt.Sprintf("$%d", v)
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DateOnly trims an ISO timestamp to its date part.
func DateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

// UploadForm is the multipart form used by every image upload page.
func UploadForm(action string) string {
	return `<form class="space-y-3" method="post" action="` + Esc(action) + `" enctype="multipart/form-data">` +
		`<input class="block w-full text-sm" type="file" name="file" accept="image/jpeg,image/png,image/webp" required>` +
		`<button class="rounded bg-[var(--axl-primary)] px-4 py-2 text-white" type="submit">Subir imagen</button></form>`
}
