// Package teams renders team creation, team detail with invites, and the
// team logo upload page.
package teams

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/forms"
	"github.com/codr1/axl-portal/internal/templates/components/ui"
)

type NewTeamView struct {
	Form      forms.CreateTeamForm
	Errors    forms.Errors
	Message   string
	Countries []ui.Option
}

type TeamView struct {
	Detail  *axl.TeamDetailResponse
	IsOwner bool
	Invite  forms.InviteForm
	Errors  forms.Errors
	Message string
}

type LogoView struct {
	Team  axl.TeamDetail
	Error string
}

func NewTeam(v NewTeamView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="mx-auto max-w-md space-y-4 rounded border bg-white p-6" id="new-team">`)
		b.WriteString(`<h1 class="text-2xl font-bold">Crear equipo</h1>`)
		b.WriteString(ui.Alert(v.Message))
		b.WriteString(`<form class="space-y-3" method="post" action="/player/teams/new">`)
		b.WriteString(ui.Input{Label: "Nombre del equipo *", Name: "teamName", Value: v.Form.TeamName, Error: v.Errors.Get("teamName"), Required: true}.HTML())
		b.WriteString(ui.Select{Label: "País *", Name: "country", Value: v.Form.Country, Options: v.Countries, Error: v.Errors.Get("country")}.HTML())
		b.WriteString(ui.Input{Label: "Provincia *", Name: "province", Value: v.Form.Province, Error: v.Errors.Get("province"), Required: true}.HTML())
		b.WriteString(`<div class="flex gap-2"><button class="rounded bg-[var(--axl-primary)] px-4 py-2 text-white" type="submit">Crear equipo</button>`)
		b.WriteString(`<a class="rounded border px-4 py-2" href="/player">Cancelar</a></div></form></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func Team(v TeamView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if v.Detail == nil {
			return ui.ErrorPanel("").Render(ctx, w)
		}
		t := v.Detail.Team
		var b strings.Builder
		b.WriteString(`<article class="space-y-6" id="team">`)
		b.WriteString(`<header class="flex items-center gap-4">`)
		if logo := ui.Deref(t.LogoURL); logo != "" {
			fmt.Fprintf(&b, `<img class="h-20 w-20 rounded object-cover" src="%s" alt="Logo del equipo">`, ui.Esc(logo))
		}
		fmt.Fprintf(&b, `<div class="flex-1"><h1 class="text-2xl font-bold">%s</h1><p class="text-sm text-slate-600">%s, %s</p></div>`,
			ui.Esc(t.TeamName), ui.Esc(t.Province), ui.Esc(t.Country))
		if v.IsOwner {
			fmt.Fprintf(&b, `<a class="text-sm underline" href="/player/teams/%s/logo">Logo del equipo</a>`, ui.Esc(t.TeamID))
		}
		b.WriteString(`</header>`)

		b.WriteString(membersHTML("Jugadores", v.Detail.Players, "Todavía no hay jugadores."))
		b.WriteString(membersHTML("Staff", v.Detail.Staff, "No hay staff cargado."))

		if v.IsOwner {
			b.WriteString(inviteFormHTML(t.TeamID, v))
		}
		b.WriteString(`<a class="text-sm underline" href="/player">Volver</a></article>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func membersHTML(title string, members []axl.TeamMember, empty string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<section class="space-y-2 rounded border bg-white p-4"><h2 class="text-lg font-bold">%s</h2>`, ui.Esc(title))
	if len(members) == 0 {
		fmt.Fprintf(&b, `<p class="text-sm text-slate-500">%s</p></section>`, ui.Esc(empty))
		return b.String()
	}
	b.WriteString(`<ul class="divide-y">`)
	for _, m := range members {
		name := strings.TrimSpace(m.Firstname + " " + m.Surname)
		if name == "" {
			name = m.Username
		}
		b.WriteString(`<li class="flex items-center gap-3 py-2">`)
		if avatar := ui.Deref(m.AvatarURL); avatar != "" {
			fmt.Fprintf(&b, `<img class="h-8 w-8 rounded-full object-cover" src="%s" alt="">`, ui.Esc(avatar))
		}
		fmt.Fprintf(&b, `<span class="flex-1">%s <span class="text-xs text-slate-500">@%s</span></span>`, ui.Esc(name), ui.Esc(m.Username))
		if m.AccessRole == axl.AccessOwner {
			b.WriteString(`<span class="rounded bg-amber-100 px-2 py-0.5 text-xs">Dueño</span>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul></section>`)
	return b.String()
}

func inviteFormHTML(teamID string, v TeamView) string {
	var b strings.Builder
	b.WriteString(`<section class="space-y-3 rounded border bg-white p-4" id="invite">`)
	b.WriteString(`<h2 class="text-lg font-bold">Invitar</h2><p class="text-sm text-slate-600">Buscá por player code</p>`)
	b.WriteString(ui.Alert(v.Message))
	fmt.Fprintf(&b, `<form class="space-y-3" method="post" action="/player/teams/%s/invites">`, ui.Esc(teamID))
	b.WriteString(ui.Input{Label: "Player code", Name: "playerCode", Value: v.Invite.PlayerCode, Placeholder: "12345-6789", Error: v.Errors.Get("playerCode"), Required: true}.HTML())
	b.WriteString(ui.Select{
		Label:   "Rol",
		Name:    "inviteRole",
		Value:   v.Invite.Role,
		Options: []ui.Option{{Value: axl.RolePlayer, Label: "Jugador"}, {Value: axl.RoleStaff, Label: "Staff"}},
		Error:   v.Errors.Get("inviteRole"),
	}.HTML())
	b.WriteString(`<button class="rounded bg-[var(--axl-primary)] px-4 py-2 text-white" type="submit">Enviar invitación</button></form></section>`)
	return b.String()
}

func Logo(v LogoView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="mx-auto max-w-lg space-y-4 rounded border bg-white p-6" id="logo">`)
		fmt.Fprintf(&b, `<h1 class="text-2xl font-bold">Logo del equipo</h1><p class="text-sm text-slate-600">%s</p>`, ui.Esc(v.Team.TeamName))
		b.WriteString(`<p class="text-sm">Subí un logo cuadrado y liviano. Se optimiza automáticamente.</p>`)
		b.WriteString(ui.Alert(v.Error))
		if logo := ui.Deref(v.Team.LogoURL); logo != "" {
			fmt.Fprintf(&b, `<img class="mx-auto h-40 w-40 rounded object-cover" src="%s" alt="Logo actual">`, ui.Esc(logo))
		} else {
			b.WriteString(`<p class="text-center text-sm text-slate-500">Sin vista previa</p>`)
		}
		b.WriteString(ui.UploadForm("/player/teams/" + v.Team.TeamID + "/logo"))
		b.WriteString(`<ul class="list-disc pl-5 text-sm text-slate-600"><li>Preferible cuadrado (1:1) y con el logo centrado.</li>`)
		b.WriteString(`<li>Evitá texto muy finito (se pierde en tamaños chicos).</li></ul>`)
		fmt.Fprintf(&b, `<a class="text-sm underline" href="/player/teams/%s">Volver</a></section>`, ui.Esc(v.Team.TeamID))
		_, err := io.WriteString(w, b.String())
		return err
	})
}
