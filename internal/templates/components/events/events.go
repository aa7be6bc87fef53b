// Package events renders team registration to a league date.
package events

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/forms"
	"github.com/codr1/axl-portal/internal/league"
	"github.com/codr1/axl-portal/internal/templates/components/ui"
)

type RegisterView struct {
	Event   league.Event
	Live    *axl.EventResponse
	Owned   []axl.Team
	Form    forms.EventRegistrationForm
	Errors  forms.Errors
	Message string
	// Confirmed is set after the backend accepted a registration.
	Confirmed string
}

// Categories offered for the date: the live list when the backend has one,
// otherwise the catalog's.
func (v RegisterView) Categories() []string {
	if v.Live != nil && len(v.Live.Event.Categories) > 0 {
		return v.Live.Event.Categories
	}
	return v.Event.CategoryNames()
}

func (v RegisterView) Open() bool {
	return v.Live != nil && v.Live.Open
}

func Register(v RegisterView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="mx-auto max-w-lg space-y-4 rounded border bg-white p-6" id="event-register">`)
		fmt.Fprintf(&b, `<h1 class="text-2xl font-bold">Inscripción · %s</h1>`, ui.Esc(v.Event.Title))
		fmt.Fprintf(&b, `<p class="text-sm text-slate-600">%s · %s</p>`, ui.Esc(v.Event.Days), ui.Esc(v.Event.Location()))
		if v.Live != nil && v.Live.Event.RegistrationClosesAt != "" {
			fmt.Fprintf(&b, `<p class="text-sm">Cierre de inscripción: %s</p>`, ui.Esc(ui.DateOnly(v.Live.Event.RegistrationClosesAt)))
		}

		if v.Confirmed == "" {
			b.WriteString(ui.Alert(v.Message))
		}
		switch {
		case v.Confirmed != "":
			fmt.Fprintf(&b, `<div class="rounded border border-green-300 bg-green-50 p-3 text-green-800" role="status"><p class="font-semibold">Inscripción confirmada</p><p class="text-sm">%s</p></div>`, ui.Esc(v.Confirmed))
		case !v.Open():
			b.WriteString(`<div class="rounded border bg-slate-50 p-3 font-semibold" id="closed">Inscripción cerrada</div>`)
		case len(v.Owned) == 0:
			b.WriteString(`<p class="text-sm">Solo el dueño de un equipo puede inscribirlo. <a class="underline" href="/player/teams/new">Crear equipo</a></p>`)
		default:
			b.WriteString(ui.FieldError(v.Errors.Get("event")))
			teams := make([]ui.Option, 0, len(v.Owned))
			for _, t := range v.Owned {
				teams = append(teams, ui.Option{Value: t.TeamID, Label: t.TeamName})
			}
			fmt.Fprintf(&b, `<form class="space-y-3" method="post" action="/player/events/%s/register">`, ui.Esc(v.Event.Slug))
			b.WriteString(ui.Select{Label: "Equipo", Name: "teamId", Value: v.Form.TeamID, Options: teams, Blank: "Elegí un equipo", Error: v.Errors.Get("teamId")}.HTML())
			b.WriteString(ui.Select{Label: "Categoría", Name: "category", Value: v.Form.Category, Options: ui.Options(v.Categories()...), Blank: "Elegí una categoría", Error: v.Errors.Get("category")}.HTML())
			b.WriteString(`<button class="rounded bg-[var(--axl-primary)] px-4 py-2 text-white" type="submit">Inscribir equipo</button></form>`)
		}
		fmt.Fprintf(&b, `<a class="text-sm underline" href="/events/%s">Ver información de la fecha</a></section>`, ui.Esc(v.Event.Slug))
		_, err := io.WriteString(w, b.String())
		return err
	})
}
