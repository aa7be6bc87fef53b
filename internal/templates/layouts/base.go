// Package layouts renders the page shell every full-page response is wrapped in.
package layouts

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/axl-portal/internal/flash"
	"github.com/codr1/axl-portal/internal/templates/components/ui"
)

const siteName = "Argentinean XBall League"

// Page is what a handler hands to Base.
type Page struct {
	Title   string
	User    string // username of the signed-in player, "" when anonymous
	Flash   *flash.Message
	Theme   *Theme
	Content templ.Component
}

func Base(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		title := siteName
		if p.Title != "" {
			title = p.Title + " - " + siteName
		}
		b.WriteString(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>` + ui.Esc(title) + `</title>`)
		b.WriteString(`<link rel="stylesheet" href="/static/css/main.css">`)
		b.WriteString(`<style>` + themeCSSVars(p.Theme) + `</style>`)
		b.WriteString(`<script src="/static/js/htmx.min.js" defer></script>`)
		b.WriteString(`</head><body class="min-h-screen bg-[var(--axl-background)] text-slate-900" hx-boost="true">`)
		b.WriteString(navHTML(p.User))
		b.WriteString(Toast(p.Flash, false))
		b.WriteString(`<main class="mx-auto max-w-5xl px-4 py-8" id="main">`)
		if err := ui.Render(ctx, &b, p.Content); err != nil {
			return err
		}
		b.WriteString(`</main>`)
		b.WriteString(`<footer class="border-t py-6 text-center text-xs text-slate-500">` + ui.Esc(siteName) + `</footer>`)
		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func navHTML(user string) string {
	var b strings.Builder
	b.WriteString(`<header class="bg-[var(--axl-secondary)] text-white"><nav class="mx-auto flex max-w-5xl items-center justify-between px-4 py-3">`)
	b.WriteString(`<a class="font-bold tracking-wide" href="/">AXL</a><div class="flex items-center gap-4 text-sm">`)
	b.WriteString(`<a href="/events">Fechas</a>`)
	if user == "" {
		b.WriteString(`<a href="/login">Iniciar Sesión</a><a class="rounded bg-[var(--axl-primary)] px-3 py-1" href="/register">Registrarse</a>`)
	} else {
		b.WriteString(`<a href="/player">` + ui.Esc(user) + `</a>`)
		b.WriteString(`<form method="post" action="/logout"><button class="underline" type="submit">Salir</button></form>`)
	}
	b.WriteString(`</div></nav></header>`)
	return b.String()
}

// Toast renders the notification slot. With oob set it is an htmx
// out-of-band swap, appended to fragment responses.
func Toast(m *flash.Message, oob bool) string {
	swap := ""
	if oob {
		swap = ` hx-swap-oob="true"`
	}
	if m == nil {
		return `<div id="toast"` + swap + `></div>`
	}
	class := "bg-slate-800"
	switch m.Kind {
	case flash.KindSuccess:
		class = "bg-green-600"
	case flash.KindError:
		class = "bg-red-600"
	}
	return `<div class="fixed right-4 top-4 z-50 rounded px-4 py-2 text-white shadow ` + class +
		`" id="toast"` + swap + ` role="status" data-kind="` + ui.Esc(string(m.Kind)) + `">` + ui.Esc(m.Text) + `</div>`
}
