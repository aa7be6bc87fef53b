// Package player renders the signed-in player's pages: dashboard, profile
// edit and photo upload.
package player

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/dashboard"
	"github.com/codr1/axl-portal/internal/forms"
	"github.com/codr1/axl-portal/internal/league"
	"github.com/codr1/axl-portal/internal/templates/components/ui"
)

type DashboardView struct {
	State  dashboard.State
	Events []league.Event
}

type ProfileView struct {
	Form    forms.ProfileForm
	Errors  forms.Errors
	Message string
}

type PhotoView struct {
	Profile *axl.Profile
	Error   string
}

// Dashboard renders the #dashboard fragment. It is also the htmx swap target
// after answering an invitation.
func Dashboard(v DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		s := v.State
		if s.Err != nil {
			return ui.ErrorPanel(s.ErrorMessage()).Render(ctx, w)
		}
		var b strings.Builder
		b.WriteString(`<div class="space-y-6" id="dashboard">`)
		if s.Loading && !s.Loaded {
			b.WriteString(`<p class="text-slate-500">Cargando dashboard…</p></div>`)
			_, err := io.WriteString(w, b.String())
			return err
		}
		for _, inv := range s.PendingInvitations() {
			b.WriteString(invitationHTML(inv))
		}
		b.WriteString(profileCardHTML(s.Profile))
		b.WriteString(teamsCardHTML(s))
		if len(v.Events) > 0 {
			b.WriteString(`<section class="rounded border bg-white p-4"><h2 class="text-lg font-bold">Inscripción de equipos</h2><ul class="mt-2 space-y-1 text-sm">`)
			for _, e := range v.Events {
				fmt.Fprintf(&b, `<li><a class="underline" href="/player/events/%s/register">%s · %s</a></li>`,
					ui.Esc(e.Slug), ui.Esc(e.Title), ui.Esc(e.Dates))
			}
			b.WriteString(`</ul></section>`)
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func invitationHTML(inv axl.Invite) string {
	teamName := ui.Deref(inv.TeamName)
	if teamName == "" {
		teamName = "un equipo"
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="flex flex-col gap-3 rounded border border-[var(--axl-primary)] bg-rose-50 p-4 sm:flex-row sm:items-center sm:justify-between" data-invite="%s">`, ui.Esc(inv.InviteID))
	b.WriteString(`<div><p class="font-semibold">Invitación a equipo</p>`)
	fmt.Fprintf(&b, `<p>Has sido invitado a unirte a <strong>%s</strong>.</p></div>`, ui.Esc(teamName))
	b.WriteString(`<div class="flex gap-2">`)
	for _, action := range []struct{ path, label, class string }{
		{"accept", "Aceptar", "bg-[var(--axl-primary)] text-white"},
		{"decline", "Rechazar", "border"},
	} {
		url := "/player/invitations/" + inv.InviteID + "/" + action.path
		fmt.Fprintf(&b, `<form method="post" action="%s" hx-post="%s" hx-target="#dashboard" hx-swap="outerHTML">`, ui.Esc(url), ui.Esc(url))
		fmt.Fprintf(&b, `<button class="rounded px-3 py-1 text-sm %s" type="submit">%s</button></form>`, action.class, action.label)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func profileCardHTML(p *axl.Profile) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<section class="flex items-center gap-4 rounded border bg-white p-4" id="profile">`)
	if avatar := ui.Deref(p.AvatarURL); avatar != "" {
		fmt.Fprintf(&b, `<img class="h-20 w-20 rounded-full object-cover" src="%s" alt="Foto de perfil">`, ui.Esc(avatar))
	} else {
		b.WriteString(`<div class="flex h-20 w-20 items-center justify-center rounded-full bg-slate-200 text-xs text-slate-500">Sin foto</div>`)
	}
	b.WriteString(`<div class="flex-1 space-y-1">`)
	fmt.Fprintf(&b, `<h1 class="text-xl font-bold">%s</h1>`, ui.Esc(p.FullName()))
	fmt.Fprintf(&b, `<p class="text-sm text-slate-600">@%s · Player code <span class="font-mono">%s</span></p>`, ui.Esc(p.Username), ui.Esc(p.PlayerCode))
	var details []string
	if pos := ui.Deref(p.Position); pos != "" {
		details = append(details, "Posición: "+pos)
	}
	if side := ui.Deref(p.Side); side != "" {
		details = append(details, "Lado: "+side)
	}
	if n := p.Number.String(); n != "" {
		details = append(details, "Número: "+n)
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, `<p class="text-sm">%s</p>`, ui.Esc(strings.Join(details, " · ")))
	}
	b.WriteString(`</div><div class="flex flex-col gap-2 text-sm">`)
	b.WriteString(`<a class="underline" href="/player/profile">Editar perfil</a><a class="underline" href="/player/photo">Foto de perfil</a>`)
	b.WriteString(`</div></section>`)
	return b.String()
}

func teamsCardHTML(s dashboard.State) string {
	var b strings.Builder
	b.WriteString(`<section class="space-y-4 rounded border bg-white p-4" id="teams">`)
	b.WriteString(`<div class="flex items-center justify-between"><div><h2 class="text-lg font-bold">Mis Equipos</h2>`)
	b.WriteString(`<p class="text-sm text-slate-600">Equipos de los que eres dueño o miembro</p></div>`)
	b.WriteString(`<a class="rounded bg-[var(--axl-primary)] px-3 py-1 text-sm text-white" href="/player/teams/new">Crear equipo</a></div>`)
	if !s.HasTeams() {
		b.WriteString(`<div class="py-8 text-center text-slate-500" id="no-teams"><p>Aún no perteneces a ningún equipo.</p>`)
		b.WriteString(`<p class="mt-1 text-sm">Crea tu propio equipo o espera una invitación.</p></div></section>`)
		return b.String()
	}
	if len(s.OwnedTeams) > 0 {
		b.WriteString(`<h3 class="text-sm font-medium text-slate-500">Equipos propios</h3><ul class="space-y-2">`)
		for _, t := range s.OwnedTeams {
			b.WriteString(teamItemHTML(t))
		}
		b.WriteString(`</ul>`)
	}
	if len(s.MemberTeams) > 0 {
		b.WriteString(`<h3 class="text-sm font-medium text-slate-500">Equipos como miembro</h3><ul class="space-y-2">`)
		for _, t := range s.MemberTeams {
			b.WriteString(teamItemHTML(t))
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</section>`)
	return b.String()
}

func teamItemHTML(t axl.Team) string {
	var b strings.Builder
	b.WriteString(`<li class="flex items-center gap-3 rounded border p-3">`)
	if logo := ui.Deref(t.LogoURL); logo != "" {
		fmt.Fprintf(&b, `<img class="h-10 w-10 rounded object-cover" src="%s" alt="">`, ui.Esc(logo))
	}
	fmt.Fprintf(&b, `<div class="flex-1"><a class="font-semibold underline" href="/player/teams/%s">%s</a>`, ui.Esc(t.TeamID), ui.Esc(t.TeamName))
	fmt.Fprintf(&b, `<p class="text-xs text-slate-500">%s, %s`, ui.Esc(t.Province), ui.Esc(t.Country))
	if t.JoinedAt != "" {
		fmt.Fprintf(&b, ` · Miembro desde %s`, ui.Esc(ui.DateOnly(t.JoinedAt)))
	}
	b.WriteString(`</p></div>`)
	if t.TeamRole != "" {
		fmt.Fprintf(&b, `<span class="rounded bg-slate-100 px-2 py-0.5 text-xs">%s</span>`, ui.Esc(t.TeamRole))
	}
	b.WriteString(`</li>`)
	return b.String()
}

func Profile(v ProfileView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		f, e := v.Form, v.Errors
		var b strings.Builder
		b.WriteString(`<section class="mx-auto max-w-lg space-y-4 rounded border bg-white p-6" id="profile-form">`)
		b.WriteString(`<h1 class="text-2xl font-bold">Editar perfil</h1><p class="text-sm text-slate-600">Actualizá tus datos de jugador</p>`)
		b.WriteString(ui.Alert(v.Message))
		b.WriteString(`<form class="grid gap-3 md:grid-cols-2" method="post" action="/player/profile">`)
		b.WriteString(ui.Input{Label: "Nombre", Name: "firstname", Value: f.Firstname, Error: e.Get("firstname"), Required: true}.HTML())
		b.WriteString(ui.Input{Label: "Apellido", Name: "surname", Value: f.Surname, Error: e.Get("surname"), Required: true}.HTML())
		b.WriteString(ui.Input{Label: "Email", Name: "email", Type: "email", Value: f.Email, Error: e.Get("email"), Required: true}.HTML())
		b.WriteString(ui.Input{Label: "Teléfono", Name: "phone", Type: "tel", Value: f.Phone, Error: e.Get("phone")}.HTML())
		b.WriteString(ui.Input{Label: "DNI", Name: "dni", Value: f.DNI, Error: e.Get("dni")}.HTML())
		b.WriteString(ui.Input{Label: "Fecha de nacimiento", Name: "birthDate", Type: "date", Value: f.BirthDate, Error: e.Get("birthDate")}.HTML())
		b.WriteString(ui.Select{Label: "Posición", Name: "position", Value: f.Position, Options: ui.Options(forms.Positions...), Blank: "-", Error: e.Get("position")}.HTML())
		b.WriteString(ui.Select{Label: "Lado", Name: "side", Value: f.Side, Options: ui.Options(forms.Sides...), Blank: "-", Error: e.Get("side")}.HTML())
		b.WriteString(ui.Input{Label: "Número (opcional)", Name: "number", Type: "number", Value: f.Number, Error: e.Get("number"), Extra: `min="0" max="99"`}.HTML())
		b.WriteString(`<div class="flex gap-2 md:col-span-2"><button class="rounded bg-[var(--axl-primary)] px-4 py-2 text-white" type="submit">Guardar</button>`)
		b.WriteString(`<a class="rounded border px-4 py-2" href="/player">Cancelar</a></div></form></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

var photoTips = []string{
	"Foto en posición vertical (retrato), con la cara centrada.",
	"Ideal: desde el pecho hacia arriba, mirando a cámara.",
	"Buena iluminación de frente (evitá contraluz).",
	"Fondo simple y prolijo.",
	"Sin accesorios que tapen la cara (lentes de sol, máscara, etc.).",
	"Sin filtros fuertes; que se vea natural.",
}

func Photo(v PhotoView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="mx-auto max-w-lg space-y-4 rounded border bg-white p-6" id="photo">`)
		b.WriteString(`<h1 class="text-2xl font-bold">Foto de perfil</h1><p class="text-sm text-slate-600">Subí una foto clara para tu perfil y futuro carnet.</p>`)
		b.WriteString(ui.Alert(v.Error))
		if v.Profile != nil {
			if avatar := ui.Deref(v.Profile.AvatarURL); avatar != "" {
				fmt.Fprintf(&b, `<img class="mx-auto h-40 w-40 rounded-full object-cover" src="%s" alt="Foto actual">`, ui.Esc(avatar))
			} else {
				b.WriteString(`<p class="text-center text-sm text-slate-500">Sin vista previa</p>`)
			}
		}
		b.WriteString(ui.UploadForm("/player/photo"))
		b.WriteString(`<ul class="list-disc pl-5 text-sm text-slate-600">`)
		for _, tip := range photoTips {
			b.WriteString(`<li>` + ui.Esc(tip) + `</li>`)
		}
		b.WriteString(`</ul><a class="text-sm underline" href="/player">Volver</a></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
