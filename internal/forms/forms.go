// Package forms parses and validates the portal's HTML forms before anything
// is sent to the league backend. An invalid form never leaves the server.
package forms

import (
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

const (
	DefaultRegion     = "AR"
	minPasswordLength = 8
	minNameLength     = 2
	birthDateLayout   = "2006-01-02"
	maxJerseyNumber   = 99
	maxTeamNameLength = 60
	maxFreeTextLength = 80
)

var (
	playerCodePattern = regexp.MustCompile(`^\d{5}-\d{4}$`)
	dniPattern        = regexp.MustCompile(`^\d{7,9}$`)

	Positions = []string{"Front", "Mid", "Back"}
	Sides     = []string{"Snake", "Doros", "Centro", "Completo"}
)

// ValidPlayerCode reports whether code is exactly five digits, a hyphen,
// and four digits.
func ValidPlayerCode(code string) bool {
	return playerCodePattern.MatchString(code)
}

// Errors maps a form field to its message.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) Get(field string) string {
	return e[field]
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// Fields returns the failing field names in a stable order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func value(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func requireMin(errs Errors, field, v string, min int, message string) {
	if utf8.RuneCountInString(v) < min {
		errs.Add(field, message)
	}
}

func validEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	return err == nil && addr.Address == v && strings.Contains(v, "@")
}

// NormalizePhone parses raw as a number in region and returns it in E.164.
func NormalizePhone(raw, region string) (string, bool) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

// ValidCountry reports whether code is an ISO-3166 alpha-2 region with a
// known calling code.
func ValidCountry(code string) bool {
	if len(code) != 2 {
		return false
	}
	return phonenumbers.GetCountryCodeForRegion(strings.ToUpper(code)) != 0
}

// personal holds the optional player fields shared by sign-up and profile edit.
type personal struct {
	Phone     string
	DNI       string
	BirthDate string
	Position  string
	Side      string
}

func parsePersonal(values url.Values) personal {
	return personal{
		Phone:     value(values, "phone"),
		DNI:       value(values, "dni"),
		BirthDate: value(values, "birthDate"),
		Position:  value(values, "position"),
		Side:      value(values, "side"),
	}
}

func (p *personal) validate(errs Errors, now time.Time) {
	if p.Phone != "" {
		normalized, ok := NormalizePhone(p.Phone, DefaultRegion)
		if !ok {
			errs.Add("phone", "Teléfono inválido")
		} else {
			p.Phone = normalized
		}
	}
	if p.DNI != "" {
		p.DNI = strings.ReplaceAll(p.DNI, ".", "")
		if !dniPattern.MatchString(p.DNI) {
			errs.Add("dni", "El DNI debe tener entre 7 y 9 dígitos")
		}
	}
	if p.BirthDate != "" {
		born, err := time.Parse(birthDateLayout, p.BirthDate)
		if err != nil {
			errs.Add("birthDate", "Fecha inválida")
		} else if !born.Before(now) {
			errs.Add("birthDate", "La fecha de nacimiento debe ser pasada")
		}
	}
	if p.Position != "" && !oneOf(p.Position, Positions) {
		errs.Add("position", "Posición inválida")
	}
	if p.Side != "" && !oneOf(p.Side, Sides) {
		errs.Add("side", "Lado inválido")
	}
}

func parseJerseyNumber(raw string) (*int, bool) {
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > maxJerseyNumber {
		return nil, false
	}
	return &n, true
}
