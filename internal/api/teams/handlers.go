// internal/api/teams/handlers.go
package teams

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/axl-portal/internal/api/apiutil"
	"github.com/codr1/axl-portal/internal/api/auth"
	"github.com/codr1/axl-portal/internal/api/htmx"
	"github.com/codr1/axl-portal/internal/api/player"
	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/dashboard"
	"github.com/codr1/axl-portal/internal/flash"
	"github.com/codr1/axl-portal/internal/forms"
	"github.com/codr1/axl-portal/internal/ratelimit"
	"github.com/codr1/axl-portal/internal/session"
	teamstempl "github.com/codr1/axl-portal/internal/templates/components/teams"
	"github.com/codr1/axl-portal/internal/templates/components/ui"
	"github.com/codr1/axl-portal/internal/upload"
)

type Backend interface {
	CreateTeam(ctx context.Context, token string, req axl.CreateTeamRequest) (*axl.CreateTeamResponse, error)
	TeamDetail(ctx context.Context, token, teamID string) (*axl.TeamDetailResponse, error)
	InviteByPlayerCode(ctx context.Context, token string, req axl.InviteByCodeRequest) (*axl.InviteByCodeResponse, error)
}

type Deps struct {
	Backend    Backend
	Dashboards player.Dashboards
	Uploads    player.Uploader
	Buckets    *ratelimit.Buckets
}

var deps Deps

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Deps) {
	deps = d
}

// countries offered when creating a team. Any region phonenumbers knows is
// accepted on submit.
var countries = []ui.Option{
	{Value: "AR", Label: "Argentina"},
	{Value: "BO", Label: "Bolivia"},
	{Value: "BR", Label: "Brasil"},
	{Value: "CL", Label: "Chile"},
	{Value: "CO", Label: "Colombia"},
	{Value: "EC", Label: "Ecuador"},
	{Value: "ES", Label: "España"},
	{Value: "US", Label: "Estados Unidos"},
	{Value: "MX", Label: "México"},
	{Value: "PY", Label: "Paraguay"},
	{Value: "PE", Label: "Perú"},
	{Value: "UY", Label: "Uruguay"},
	{Value: "VE", Label: "Venezuela"},
}

func currentSession(r *http.Request) *session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

// ownsTeam consults the session's dashboard. Ownership is re-checked by the
// backend on every mutation; this only decides what the page offers.
func ownsTeam(ctx context.Context, sess *session.Session, teamID string) (bool, error) {
	p := deps.Dashboards.For(sess)
	if err := p.Activate(ctx); err != nil {
		return false, err
	}
	return p.State().OwnsTeam(teamID), nil
}

func renderNewTeam(w http.ResponseWriter, r *http.Request, status int, v teamstempl.NewTeamView) {
	v.Countries = countries
	apiutil.RenderPage(w, r, status, "Crear equipo", teamstempl.NewTeam(v))
}

// GET /player/teams/new
func HandleNewTeamPage(w http.ResponseWriter, r *http.Request) {
	renderNewTeam(w, r, http.StatusOK, teamstempl.NewTeamView{Form: forms.NewCreateTeamForm()})
}

// POST /player/teams/new
func HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	sess := currentSession(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := forms.ParseCreateTeam(r.PostForm)
	view := teamstempl.NewTeamView{Form: form}
	if errs := form.Validate(); errs.Any() {
		view.Errors = errs
		renderNewTeam(w, r, http.StatusUnprocessableEntity, view)
		return
	}

	resp, err := deps.Backend.CreateTeam(r.Context(), sess.Token, form.Request())
	if err != nil {
		if apiutil.SessionExpired(err) {
			auth.Expire(w, r)
			return
		}
		logger.Warn().Err(err).Str("team_name", form.TeamName).Msg("Team creation failed")
		view.Message = apiutil.UserMessage(err, "No se pudo crear el equipo")
		renderNewTeam(w, r, http.StatusBadGateway, view)
		return
	}

	if err := deps.Dashboards.Refresh(r.Context(), sess); err != nil {
		logger.Warn().Err(err).Msg("Dashboard refresh after team creation failed")
	}

	message := resp.Message
	if message == "" {
		message = "Equipo creado ✅"
	}
	flash.Set(w, flash.Success(message))
	target := "/player"
	if id := ui.Deref(resp.TeamID); id != "" {
		logger.Info().Str("team_id", id).Msg("Team created")
		target = "/player/teams/" + id
	}
	htmx.Redirect(w, r, target)
}

// GET /player/teams/{teamID}
func HandleTeam(w http.ResponseWriter, r *http.Request) {
	renderTeam(w, r, http.StatusOK, teamstempl.TeamView{Invite: forms.InviteForm{Role: axl.RolePlayer}})
}

// renderTeam loads the team and fills in the detail and ownership of v.
func renderTeam(w http.ResponseWriter, r *http.Request, status int, v teamstempl.TeamView) {
	logger := log.Ctx(r.Context())
	sess := currentSession(r)
	teamID := r.PathValue("teamID")

	detail, err := deps.Backend.TeamDetail(r.Context(), sess.Token, teamID)
	if err != nil {
		if apiutil.SessionExpired(err) {
			auth.Expire(w, r)
			return
		}
		logger.Warn().Err(err).Str("team_id", teamID).Msg("Failed to load team")
		code := http.StatusBadGateway
		var remote *axl.RemoteError
		if errors.As(err, &remote) && remote.Status == http.StatusNotFound {
			code = http.StatusNotFound
		}
		apiutil.RenderPage(w, r, code, "Equipo", ui.ErrorPanel(apiutil.UserMessage(err, "No se pudo cargar el equipo")))
		return
	}

	owner, err := ownsTeam(r.Context(), sess, teamID)
	if err != nil && apiutil.SessionExpired(err) {
		auth.Expire(w, r)
		return
	}
	v.Detail = detail
	v.IsOwner = owner || (detail.Team.OwnerUserID != "" && detail.Team.OwnerUserID == sess.UserID)
	apiutil.RenderPage(w, r, status, detail.Team.TeamName, teamstempl.Team(v))
}

// POST /player/teams/{teamID}/invites
func HandleInvite(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	sess := currentSession(r)
	teamID := r.PathValue("teamID")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := forms.ParseInvite(r.PostForm)
	if errs := form.Validate(); errs.Any() {
		renderTeam(w, r, http.StatusUnprocessableEntity, teamstempl.TeamView{Invite: form, Errors: errs})
		return
	}

	if _, err := deps.Backend.InviteByPlayerCode(r.Context(), sess.Token, form.Request(teamID)); err != nil {
		if apiutil.SessionExpired(err) {
			auth.Expire(w, r)
			return
		}
		logger.Warn().Err(err).Str("team_id", teamID).Msg("Invite failed")
		view := teamstempl.TeamView{Invite: form, Message: apiutil.UserMessage(err, "No se pudo enviar la invitación")}
		renderTeam(w, r, http.StatusBadGateway, view)
		return
	}

	logger.Info().Str("team_id", teamID).Str("invite_role", form.Role).Msg("Invite sent")
	flash.Set(w, flash.Success(fmt.Sprintf("Invitación enviada como %s ✅", roleLabel(form.Role))))
	htmx.Redirect(w, r, "/player/teams/"+teamID)
}

func roleLabel(role string) string {
	if role == axl.RoleStaff {
		return "Staff"
	}
	return "Jugador"
}

// ownedTeam returns the team when the caller owns it. Otherwise it has
// already answered the request.
func ownedTeam(w http.ResponseWriter, r *http.Request) (axl.Team, bool) {
	sess := currentSession(r)
	teamID := r.PathValue("teamID")

	p := deps.Dashboards.For(sess)
	if err := p.Activate(r.Context()); err != nil {
		if apiutil.SessionExpired(err) || errors.Is(err, dashboard.ErrUnauthenticated) {
			auth.Expire(w, r)
			return axl.Team{}, false
		}
		apiutil.RenderPage(w, r, http.StatusBadGateway, "Logo del equipo", ui.ErrorPanel(apiutil.UserMessage(err, "No se pudieron cargar tus equipos")))
		return axl.Team{}, false
	}
	for _, team := range p.State().OwnedTeams {
		if team.TeamID == teamID {
			return team, true
		}
	}
	flash.Set(w, flash.Error("Solo el dueño puede cambiar el logo del equipo"))
	http.Redirect(w, r, "/player/teams/"+teamID, http.StatusSeeOther)
	return axl.Team{}, false
}

func logoView(team axl.Team, message string) teamstempl.LogoView {
	return teamstempl.LogoView{
		Team:  axl.TeamDetail{TeamID: team.TeamID, TeamName: team.TeamName, LogoURL: team.LogoURL},
		Error: message,
	}
}

// GET /player/teams/{teamID}/logo
func HandleLogoPage(w http.ResponseWriter, r *http.Request) {
	team, ok := ownedTeam(w, r)
	if !ok {
		return
	}
	apiutil.RenderPage(w, r, http.StatusOK, "Logo del equipo", teamstempl.Logo(logoView(team, "")))
}

// POST /player/teams/{teamID}/logo
func HandleLogoUpload(w http.ResponseWriter, r *http.Request) {
	team, ok := ownedTeam(w, r)
	if !ok {
		return
	}
	sess := currentSession(r)

	if !apiutil.AllowUpload(w, deps.Buckets, sess.ID) {
		apiutil.RenderPage(w, r, http.StatusTooManyRequests, "Logo del equipo", teamstempl.Logo(logoView(team, player.TooManyUploads)))
		return
	}

	src, err := apiutil.ReadImage(w, r)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Failed to read logo upload")
		apiutil.RenderPage(w, r, http.StatusBadRequest, "Logo del equipo", teamstempl.Logo(logoView(team, "No se pudo leer el archivo.")))
		return
	}

	_, err = deps.Uploads.Run(r.Context(), sess, upload.Request{Kind: upload.KindTeamLogo, TeamID: team.TeamID, Source: src})
	if err != nil {
		status, message, handled := player.UploadFailure(w, r, err)
		if handled {
			return
		}
		if errors.Is(err, upload.ErrNoFile) {
			htmx.Redirect(w, r, "/player/teams/"+team.TeamID+"/logo")
			return
		}
		apiutil.RenderPage(w, r, status, "Logo del equipo", teamstempl.Logo(logoView(team, message)))
		return
	}

	flash.Set(w, flash.Success("Logo actualizado ✅"))
	htmx.Redirect(w, r, "/player/teams/"+team.TeamID)
}
