package forms

import (
	"net/url"
	"time"

	"github.com/codr1/axl-portal/internal/axl"
)

type LoginForm struct {
	Login    string
	Password string
}

func ParseLogin(values url.Values) LoginForm {
	return LoginForm{
		Login:    value(values, "login"),
		Password: values.Get("password"),
	}
}

func (f LoginForm) Validate() Errors {
	errs := Errors{}
	if f.Login == "" {
		errs.Add("login", "Ingresá tu usuario o email")
	}
	if f.Password == "" {
		errs.Add("password", "Ingresá tu contraseña")
	}
	return errs
}

func (f LoginForm) Request() axl.LoginRequest {
	return axl.LoginRequest{Login: f.Login, Password: f.Password}
}

type RegisterForm struct {
	Username  string
	Email     string
	Password  string
	Firstname string
	Surname   string
	personal
}

func ParseRegister(values url.Values) RegisterForm {
	return RegisterForm{
		Username:  value(values, "username"),
		Email:     value(values, "email"),
		Password:  values.Get("password"),
		Firstname: value(values, "firstname"),
		Surname:   value(values, "surname"),
		personal:  parsePersonal(values),
	}
}

// Validate checks the form and normalizes phone and DNI in place.
func (f *RegisterForm) Validate(now time.Time) Errors {
	errs := Errors{}
	if f.Username == "" {
		errs.Add("username", "Elegí un nombre de usuario")
	}
	if !validEmail(f.Email) {
		errs.Add("email", "Email inválido")
	}
	if len(f.Password) < minPasswordLength {
		errs.Add("password", "La contraseña debe tener al menos 8 caracteres")
	}
	requireMin(errs, "firstname", f.Firstname, minNameLength, "Ingresá tu nombre")
	requireMin(errs, "surname", f.Surname, minNameLength, "Ingresá tu apellido")
	f.personal.validate(errs, now)
	return errs
}

func (f RegisterForm) Request() axl.RegisterRequest {
	return axl.RegisterRequest{
		Username:  f.Username,
		Email:     f.Email,
		Password:  f.Password,
		Firstname: f.Firstname,
		Surname:   f.Surname,
		Phone:     optional(f.Phone),
		DNI:       optional(f.DNI),
		BirthDate: optional(f.BirthDate),
		Position:  optional(f.Position),
		Side:      optional(f.Side),
	}
}

type ProfileForm struct {
	Firstname string
	Surname   string
	Email     string
	Number    string
	personal

	number *int
}

func ParseProfile(values url.Values) ProfileForm {
	return ProfileForm{
		Firstname: value(values, "firstname"),
		Surname:   value(values, "surname"),
		Email:     value(values, "email"),
		Number:    value(values, "number"),
		personal:  parsePersonal(values),
	}
}

// ProfileFormFrom pre-fills the edit form from the stored profile.
func ProfileFormFrom(p *axl.Profile) ProfileForm {
	if p == nil {
		return ProfileForm{}
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	birthDate := deref(p.BirthDate)
	if len(birthDate) > len(birthDateLayout) {
		birthDate = birthDate[:len(birthDateLayout)]
	}
	return ProfileForm{
		Firstname: p.Firstname,
		Surname:   p.Surname,
		Email:     p.Email,
		Number:    p.Number.String(),
		personal: personal{
			Phone:     deref(p.Phone),
			DNI:       deref(p.DNI),
			BirthDate: birthDate,
			Position:  deref(p.Position),
			Side:      deref(p.Side),
		},
	}
}

func (f *ProfileForm) Validate(now time.Time) Errors {
	errs := Errors{}
	requireMin(errs, "firstname", f.Firstname, minNameLength, "Ingresá tu nombre")
	requireMin(errs, "surname", f.Surname, minNameLength, "Ingresá tu apellido")
	if !validEmail(f.Email) {
		errs.Add("email", "Email inválido")
	}
	f.personal.validate(errs, now)
	n, ok := parseJerseyNumber(f.Number)
	if !ok {
		errs.Add("number", "El número debe estar entre 0 y 99")
	}
	f.number = n
	return errs
}

// Request builds the update body. Blank optional fields become null so the
// backend clears them. Call Validate first.
func (f ProfileForm) Request() axl.UpdateMeRequest {
	return axl.UpdateMeRequest{
		Firstname: f.Firstname,
		Surname:   f.Surname,
		Email:     f.Email,
		Phone:     optional(f.Phone),
		DNI:       optional(f.DNI),
		BirthDate: optional(f.BirthDate),
		Position:  optional(f.Position),
		Side:      optional(f.Side),
		Number:    f.number,
	}
}
