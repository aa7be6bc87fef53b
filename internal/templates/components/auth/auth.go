// Package auth renders the login and sign-up forms.
package auth

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/axl-portal/internal/forms"
	"github.com/codr1/axl-portal/internal/templates/components/ui"
)

type LoginView struct {
	Form    forms.LoginForm
	Errors  forms.Errors
	Message string // backend or rate-limit failure
}

type RegisterView struct {
	Form    forms.RegisterForm
	Errors  forms.Errors
	Message string
}

func Login(v LoginView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="mx-auto max-w-sm space-y-4 rounded border bg-white p-6" id="login">`)
		b.WriteString(`<h1 class="text-2xl font-bold">Iniciar Sesión</h1>`)
		b.WriteString(ui.Alert(v.Message))
		b.WriteString(`<form class="space-y-3" method="post" action="/login">`)
		b.WriteString(ui.Input{Label: "Usuario o email", Name: "login", Value: v.Form.Login, Error: v.Errors.Get("login"), Required: true}.HTML())
		b.WriteString(ui.Input{Label: "Contraseña", Name: "password", Type: "password", Error: v.Errors.Get("password"), Required: true}.HTML())
		b.WriteString(`<button class="w-full rounded bg-[var(--axl-primary)] py-2 text-white" type="submit">Ingresar</button>`)
		b.WriteString(`</form><p class="text-center text-sm">¿No tenés cuenta? <a class="underline" href="/register">Registrarse</a></p></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func Register(v RegisterView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		f, e := v.Form, v.Errors
		var b strings.Builder
		b.WriteString(`<section class="mx-auto max-w-lg space-y-4 rounded border bg-white p-6" id="register">`)
		b.WriteString(`<h1 class="text-2xl font-bold">Crear Cuenta</h1>`)
		b.WriteString(ui.Alert(v.Message))
		b.WriteString(`<form class="grid gap-3 md:grid-cols-2" method="post" action="/register">`)
		b.WriteString(ui.Input{Label: "Usuario *", Name: "username", Value: f.Username, Error: e.Get("username"), Required: true}.HTML())
		b.WriteString(ui.Input{Label: "Email *", Name: "email", Type: "email", Value: f.Email, Error: e.Get("email"), Required: true}.HTML())
		b.WriteString(ui.Input{Label: "Contraseña *", Name: "password", Type: "password", Error: e.Get("password"), Required: true, Extra: `minlength="8"`}.HTML())
		b.WriteString(ui.Input{Label: "Nombre *", Name: "firstname", Value: f.Firstname, Error: e.Get("firstname"), Required: true}.HTML())
		b.WriteString(ui.Input{Label: "Apellido *", Name: "surname", Value: f.Surname, Error: e.Get("surname"), Required: true}.HTML())
		b.WriteString(ui.Input{Label: "Teléfono", Name: "phone", Type: "tel", Value: f.Phone, Error: e.Get("phone")}.HTML())
		b.WriteString(ui.Input{Label: "DNI", Name: "dni", Value: f.DNI, Error: e.Get("dni")}.HTML())
		b.WriteString(ui.Input{Label: "Fecha de nacimiento", Name: "birthDate", Type: "date", Value: f.BirthDate, Error: e.Get("birthDate")}.HTML())
		b.WriteString(ui.Select{Label: "Posición", Name: "position", Value: f.Position, Options: ui.Options(forms.Positions...), Blank: "-", Error: e.Get("position")}.HTML())
		b.WriteString(ui.Select{Label: "Lado", Name: "side", Value: f.Side, Options: ui.Options(forms.Sides...), Blank: "-", Error: e.Get("side")}.HTML())
		b.WriteString(`<button class="rounded bg-[var(--axl-primary)] py-2 text-white md:col-span-2" type="submit">Registrarse</button>`)
		b.WriteString(`</form><p class="text-center text-sm">¿Ya tenés cuenta? <a class="underline" href="/login">Iniciar Sesión</a></p></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
