// internal/api/player/handlers.go
package player

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/axl-portal/internal/api/apiutil"
	"github.com/codr1/axl-portal/internal/api/auth"
	"github.com/codr1/axl-portal/internal/api/htmx"
	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/dashboard"
	"github.com/codr1/axl-portal/internal/flash"
	"github.com/codr1/axl-portal/internal/forms"
	"github.com/codr1/axl-portal/internal/league"
	"github.com/codr1/axl-portal/internal/ratelimit"
	"github.com/codr1/axl-portal/internal/session"
	playertempl "github.com/codr1/axl-portal/internal/templates/components/player"
	"github.com/codr1/axl-portal/internal/upload"
)

type Backend interface {
	UpdateMe(ctx context.Context, token string, req axl.UpdateMeRequest) (*axl.UpdateMeResponse, error)
}

// Dashboards hands out the per-session data provider.
type Dashboards interface {
	For(sess *session.Session) *dashboard.Provider
	Refresh(ctx context.Context, sess *session.Session) error
}

type Uploader interface {
	Run(ctx context.Context, sess *session.Session, req upload.Request) (*upload.Result, error)
}

type Deps struct {
	Backend    Backend
	Dashboards Dashboards
	Uploads    Uploader
	Buckets    *ratelimit.Buckets
	Catalog    *league.Catalog
	Now        func() time.Time
}

var deps Deps

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	deps = d
}

// currentSession is set by the session guard on every route in this package.
func currentSession(r *http.Request) *session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

// loadState activates the provider. It returns false after answering the
// request itself (expired backend session).
func loadState(w http.ResponseWriter, r *http.Request) (*dashboard.Provider, bool) {
	p := deps.Dashboards.For(currentSession(r))
	if err := p.Activate(r.Context()); err != nil && apiutil.SessionExpired(err) {
		auth.Expire(w, r)
		return nil, false
	}
	return p, true
}

func registrableEvents() []league.Event {
	if deps.Catalog == nil {
		return nil
	}
	var events []league.Event
	for _, e := range deps.Catalog.Events {
		if e.Registrable() {
			events = append(events, e)
		}
	}
	return events
}

// GET /player
func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := loadState(w, r)
	if !ok {
		return
	}
	view := playertempl.DashboardView{State: p.State(), Events: registrableEvents()}
	apiutil.RenderPage(w, r, http.StatusOK, "Panel de jugador", playertempl.Dashboard(view))
}

// GET /player/profile
func HandleProfilePage(w http.ResponseWriter, r *http.Request) {
	p, ok := loadState(w, r)
	if !ok {
		return
	}
	state := p.State()
	if state.Profile == nil {
		apiutil.RenderPage(w, r, http.StatusOK, "Editar perfil", playertempl.Dashboard(playertempl.DashboardView{State: state}))
		return
	}
	view := playertempl.ProfileView{Form: forms.ProfileFormFrom(state.Profile)}
	apiutil.RenderPage(w, r, http.StatusOK, "Editar perfil", playertempl.Profile(view))
}

// POST /player/profile
func HandleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	sess := currentSession(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := forms.ParseProfile(r.PostForm)
	errs := form.Validate(deps.Now())
	view := playertempl.ProfileView{Form: form, Errors: errs}
	if errs.Any() {
		apiutil.RenderPage(w, r, http.StatusUnprocessableEntity, "Editar perfil", playertempl.Profile(view))
		return
	}

	if _, err := deps.Backend.UpdateMe(r.Context(), sess.Token, form.Request()); err != nil {
		if apiutil.SessionExpired(err) {
			auth.Expire(w, r)
			return
		}
		logger.Warn().Err(err).Msg("Profile update failed")
		view.Message = apiutil.UserMessage(err, "No se pudo actualizar el perfil")
		apiutil.RenderPage(w, r, http.StatusBadGateway, "Editar perfil", playertempl.Profile(view))
		return
	}

	if err := deps.Dashboards.Refresh(r.Context(), sess); err != nil {
		logger.Warn().Err(err).Msg("Dashboard refresh after profile update failed")
	}
	flash.Set(w, flash.Success("Perfil actualizado ✅"))
	htmx.Redirect(w, r, "/player")
}

// GET /player/photo
func HandlePhotoPage(w http.ResponseWriter, r *http.Request) {
	p, ok := loadState(w, r)
	if !ok {
		return
	}
	view := playertempl.PhotoView{Profile: p.State().Profile}
	apiutil.RenderPage(w, r, http.StatusOK, "Foto de perfil", playertempl.Photo(view))
}

// POST /player/photo
func HandlePhotoUpload(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	renderError := func(status int, message string) {
		view := playertempl.PhotoView{Profile: deps.Dashboards.For(sess).State().Profile, Error: message}
		apiutil.RenderPage(w, r, status, "Foto de perfil", playertempl.Photo(view))
	}

	if !apiutil.AllowUpload(w, deps.Buckets, sess.ID) {
		renderError(http.StatusTooManyRequests, TooManyUploads)
		return
	}

	src, err := apiutil.ReadImage(w, r)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Failed to read avatar upload")
		renderError(http.StatusBadRequest, "No se pudo leer el archivo.")
		return
	}

	if _, err := deps.Uploads.Run(r.Context(), sess, upload.Request{Kind: upload.KindAvatar, Source: src}); err != nil {
		status, message, handled := UploadFailure(w, r, err)
		if handled {
			return
		}
		if errors.Is(err, upload.ErrNoFile) {
			htmx.Redirect(w, r, "/player/photo")
			return
		}
		renderError(status, message)
		return
	}

	flash.Set(w, flash.Success("Foto actualizada ✅"))
	htmx.Redirect(w, r, "/player")
}

// TooManyUploads is shown when a session exceeds its upload budget.
const TooManyUploads = "Demasiadas subidas seguidas. Esperá un momento."

// UploadFailure maps an orchestrator error to a status and message. When the
// backend rejected the session it answers the request itself and reports
// handled.
func UploadFailure(w http.ResponseWriter, r *http.Request, err error) (status int, message string, handled bool) {
	if errors.Is(err, upload.ErrUnauthenticated) || apiutil.SessionExpired(err) {
		auth.Expire(w, r)
		return 0, "", true
	}
	var stageErr *upload.StageError
	if errors.As(err, &stageErr) {
		if stageErr.Stage == upload.StageValidate {
			return http.StatusUnprocessableEntity, stageErr.Error(), false
		}
		return http.StatusBadGateway, stageErr.Error(), false
	}
	return http.StatusInternalServerError, "No se pudo subir la imagen.", false
}

// POST /player/invitations/{inviteID}/accept
func HandleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	answerInvitation(w, r, true)
}

// POST /player/invitations/{inviteID}/decline
func HandleDeclineInvitation(w http.ResponseWriter, r *http.Request) {
	answerInvitation(w, r, false)
}

func answerInvitation(w http.ResponseWriter, r *http.Request, accept bool) {
	logger := log.Ctx(r.Context())
	inviteID := r.PathValue("inviteID")

	p, ok := loadState(w, r)
	if !ok {
		return
	}

	var msg flash.Message
	inv, found := p.FindInvitation(inviteID)
	switch {
	case !found:
		msg = flash.Error("La invitación ya no está disponible")
	default:
		decide := p.DeclineInvitation
		if accept {
			decide = p.AcceptInvitation
		}
		text, err := decide(r.Context(), inv)
		if err != nil {
			if apiutil.SessionExpired(err) || errors.Is(err, dashboard.ErrUnauthenticated) {
				auth.Expire(w, r)
				return
			}
			logger.Warn().Err(err).Str("invite_id", inviteID).Bool("accept", accept).Msg("Invitation answer failed")
			msg = flash.Error(apiutil.UserMessage(err, "No se pudo responder la invitación"))
		} else {
			logger.Info().Str("invite_id", inviteID).Str("team_id", inv.TeamID).Bool("accept", accept).Msg("Invitation answered")
			msg = flash.Success(text)
		}
	}

	if htmx.IsRequest(r) {
		view := playertempl.DashboardView{State: p.State(), Events: registrableEvents()}
		apiutil.RenderFragment(w, r, playertempl.Dashboard(view), &msg)
		return
	}
	flash.Set(w, msg)
	http.Redirect(w, r, "/player", http.StatusSeeOther)
}
