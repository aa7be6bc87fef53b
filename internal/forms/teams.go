package forms

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/codr1/axl-portal/internal/axl"
)

type CreateTeamForm struct {
	TeamName string
	Country  string
	Province string
}

func ParseCreateTeam(values url.Values) CreateTeamForm {
	return CreateTeamForm{
		TeamName: value(values, "teamName"),
		Country:  strings.ToUpper(value(values, "country")),
		Province: value(values, "province"),
	}
}

// NewCreateTeamForm is the blank form, with Argentina preselected.
func NewCreateTeamForm() CreateTeamForm {
	return CreateTeamForm{Country: DefaultRegion}
}

func (f CreateTeamForm) Validate() Errors {
	errs := Errors{}
	switch {
	case f.TeamName == "":
		errs.Add("teamName", "Ingresá el nombre del equipo")
	case utf8.RuneCountInString(f.TeamName) > maxTeamNameLength:
		errs.Add("teamName", "El nombre es demasiado largo")
	}
	switch {
	case f.Country == "":
		errs.Add("country", "Elegí un país")
	case !ValidCountry(f.Country):
		errs.Add("country", "País inválido")
	}
	switch {
	case f.Province == "":
		errs.Add("province", "Ingresá la provincia")
	case utf8.RuneCountInString(f.Province) > maxFreeTextLength:
		errs.Add("province", "La provincia es demasiado larga")
	}
	return errs
}

func (f CreateTeamForm) Request() axl.CreateTeamRequest {
	return axl.CreateTeamRequest{TeamName: f.TeamName, Country: f.Country, Province: f.Province}
}

type InviteForm struct {
	PlayerCode string
	Role       string
}

func ParseInvite(values url.Values) InviteForm {
	role := strings.ToUpper(value(values, "inviteRole"))
	if role == "" {
		role = axl.RolePlayer
	}
	return InviteForm{
		PlayerCode: value(values, "playerCode"),
		Role:       role,
	}
}

func (f InviteForm) Validate() Errors {
	errs := Errors{}
	if !ValidPlayerCode(f.PlayerCode) {
		errs.Add("playerCode", "Código inválido. Formato: 12345-6789")
	}
	if f.Role != axl.RolePlayer && f.Role != axl.RoleStaff {
		errs.Add("inviteRole", "Rol inválido")
	}
	return errs
}

func (f InviteForm) Request(teamID string) axl.InviteByCodeRequest {
	return axl.InviteByCodeRequest{TeamID: teamID, PlayerCode: f.PlayerCode, InviteRole: f.Role}
}

type EventRegistrationForm struct {
	TeamID   string
	Category string
}

func ParseEventRegistration(values url.Values) EventRegistrationForm {
	return EventRegistrationForm{
		TeamID:   value(values, "teamId"),
		Category: value(values, "category"),
	}
}

// Validate checks the choice against what the user owns and what the event
// offers. Registration must still be open.
func (f EventRegistrationForm) Validate(owned []axl.Team, categories []string, open bool) Errors {
	errs := Errors{}
	if !open {
		errs.Add("event", "La inscripción está cerrada")
	}
	found := false
	for _, team := range owned {
		if team.TeamID == f.TeamID {
			found = true
			break
		}
	}
	if !found {
		errs.Add("teamId", "Elegí uno de tus equipos")
	}
	if !oneOf(f.Category, categories) {
		errs.Add("category", "Elegí una categoría")
	}
	return errs
}

func (f EventRegistrationForm) Request(eventID string) axl.EventRegistrationRequest {
	return axl.EventRegistrationRequest{EventID: eventID, TeamID: f.TeamID, Category: f.Category}
}
