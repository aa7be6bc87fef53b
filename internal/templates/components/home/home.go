// Package home renders the public pages: landing, calendar and date detail.
package home

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/axl-portal/internal/league"
	"github.com/codr1/axl-portal/internal/templates/components/ui"
)

func Home(c *league.Catalog) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="space-y-4 py-10 text-center">`)
		b.WriteString(`<h1 class="text-4xl font-extrabold">Argentinean XBall League</h1>`)
		fmt.Fprintf(&b, `<p class="text-lg text-slate-600">Temporada %d</p>`, c.Season)
		b.WriteString(`<div class="flex justify-center gap-3">`)
		b.WriteString(`<a class="rounded bg-[var(--axl-primary)] px-4 py-2 text-white" href="/register">Registrarme Ahora</a>`)
		b.WriteString(`<a class="rounded border px-4 py-2" href="/events">Ver Eventos</a>`)
		b.WriteString(`</div></section>`)
		b.WriteString(calendarHTML(c))
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func Events(c *league.Catalog) templ.Component {
	return ui.Markup(calendarHTML(c))
}

func calendarHTML(c *league.Catalog) string {
	var b strings.Builder
	b.WriteString(`<section class="space-y-4" id="calendar">`)
	b.WriteString(`<h2 class="text-2xl font-bold">` + ui.Esc(c.Title) + `</h2>`)
	b.WriteString(`<ol class="grid gap-4 md:grid-cols-3">`)
	for _, e := range c.Events {
		b.WriteString(`<li class="rounded border bg-white p-4 shadow-sm">`)
		fmt.Fprintf(&b, `<h3 class="text-xl font-bold">%s</h3>`, ui.Esc(e.Title))
		fmt.Fprintf(&b, `<p class="font-medium">%s</p>`, ui.Esc(e.Dates))
		fmt.Fprintf(&b, `<p class="text-sm text-slate-600">%s</p>`, ui.Esc(e.Location()))
		if e.Detailed() {
			fmt.Fprintf(&b, `<a class="mt-2 inline-block text-sm underline" href="/events/%s">Ver detalle</a>`, ui.Esc(e.Slug))
		} else {
			b.WriteString(`<p class="mt-2 text-sm text-slate-500">Información próximamente</p>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ol>`)
	if c.Divisions != "" {
		b.WriteString(`<p class="text-center text-sm font-semibold tracking-wide">` + ui.Esc(c.Divisions) + `</p>`)
	}
	b.WriteString(`</section>`)
	return b.String()
}

// EventDetail is the public information page for one date. signedIn decides
// where the registration button leads.
func EventDetail(e league.Event, signedIn bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<article class="space-y-8" id="event-detail">`)
		b.WriteString(`<header class="space-y-1">`)
		fmt.Fprintf(&b, `<h1 class="text-3xl font-extrabold">%s</h1>`, ui.Esc(e.Title))
		fmt.Fprintf(&b, `<p>%s · %s</p>`, ui.Esc(e.Days), ui.Esc(e.Location()))
		b.WriteString(`</header>`)

		if len(e.Notes) > 0 {
			b.WriteString(`<ul class="list-disc pl-5 text-sm">`)
			for _, n := range e.Notes {
				b.WriteString(`<li>` + ui.Esc(n) + `</li>`)
			}
			b.WriteString(`</ul>`)
		}

		if e.Detailed() {
			b.WriteString(`<section class="space-y-3"><h2 class="text-2xl font-bold">Categorías</h2><div class="grid gap-4 md:grid-cols-3">`)
			for _, c := range e.Categories {
				b.WriteString(categoryHTML(c, e.PriceDeadline))
			}
			b.WriteString(`</div></section>`)
		}

		if len(e.Amenities) > 0 {
			b.WriteString(`<section class="space-y-2"><h2 class="text-2xl font-bold">El predio</h2>`)
			b.WriteString(`<p class="text-sm text-slate-600">Comodidades disponibles durante el evento</p><ul class="grid grid-cols-2 gap-2 text-sm">`)
			for _, a := range e.Amenities {
				b.WriteString(`<li>` + ui.Esc(a) + `</li>`)
			}
			b.WriteString(`</ul></section>`)
		}

		if e.MapURL != "" {
			b.WriteString(`<section class="space-y-2"><h2 class="text-2xl font-bold">Ubicación</h2>`)
			fmt.Fprintf(&b, `<a class="underline" href="%s" target="_blank" rel="noreferrer">%s</a></section>`, ui.Esc(e.MapURL), ui.Esc(e.Location()))
		}

		if len(e.Lodging) > 0 {
			b.WriteString(`<section class="space-y-3"><h2 class="text-2xl font-bold">Alojamientos</h2>`)
			for _, l := range e.Lodging {
				b.WriteString(`<div class="rounded border bg-white p-4">`)
				fmt.Fprintf(&b, `<h3 class="font-semibold"><a class="underline" href="%s" target="_blank" rel="noreferrer">%s</a></h3>`, ui.Esc(l.URL), ui.Esc(l.Name))
				fmt.Fprintf(&b, `<p class="text-sm">%s</p><p class="text-sm text-slate-600">%s</p>`, ui.Esc(l.Details), ui.Esc(l.Rate))
				b.WriteString(`</div>`)
			}
			b.WriteString(`<p class="text-xs text-slate-500">Nota: precios y disponibilidad pueden variar. Confirmá al reservar.</p></section>`)
		}

		if e.Registrable() {
			target := "/login"
			if signedIn {
				target = "/player/events/" + e.Slug + "/register"
			}
			fmt.Fprintf(&b, `<a class="inline-block rounded bg-[var(--axl-primary)] px-4 py-2 text-white" href="%s">Inscribirme</a>`, ui.Esc(target))
		}
		b.WriteString(`</article>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func categoryHTML(c league.Category, deadline string) string {
	var b strings.Builder
	b.WriteString(`<div class="space-y-2 rounded border bg-white p-4">`)
	fmt.Fprintf(&b, `<h3 class="text-lg font-bold">%s</h3>`, ui.Esc(c.Name))
	b.WriteString(`<dl class="grid grid-cols-2 gap-1 text-sm">`)
	fmt.Fprintf(&b, `<dt>Tiempo de juego</dt><dd>%s</dd>`, ui.Esc(c.GameTime))
	fmt.Fprintf(&b, `<dt>Límite de pintura</dt><dd>%s</dd>`, ui.Esc(c.Marker))
	fmt.Fprintf(&b, `<dt>Formato</dt><dd>%s</dd>`, ui.Esc(c.Format))
	b.WriteString(`</dl><div class="text-sm font-semibold">Inscripción (USD)</div><dl class="grid grid-cols-2 gap-1 text-sm">`)
	before, after := "Antes", "Después"
	if deadline != "" {
		before, after = "Hasta el "+deadline, "Después del "+deadline
	}
	fmt.Fprintf(&b, `<dt>%s</dt><dd>%s</dd><dt>%s</dt><dd>%s</dd>`,
		ui.Esc(before), ui.Money(c.Prices.Before), ui.Esc(after), ui.Money(c.Prices.After))
	b.WriteString(`</dl><div class="text-sm font-semibold">Premios en efectivo (USD)</div><dl class="grid grid-cols-2 gap-1 text-sm">`)
	fmt.Fprintf(&b, `<dt>1º puesto</dt><dd>%s</dd><dt>2º puesto</dt><dd>%s</dd><dt>3º puesto</dt><dd>%s</dd>`,
		ui.Money(c.Prizes.First), ui.Money(c.Prizes.Second), ui.Money(c.Prizes.Third))
	b.WriteString(`</dl></div>`)
	return b.String()
}
