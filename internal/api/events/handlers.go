// internal/api/events/handlers.go
package events

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/axl-portal/internal/api/apiutil"
	"github.com/codr1/axl-portal/internal/api/auth"
	"github.com/codr1/axl-portal/internal/api/player"
	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/forms"
	"github.com/codr1/axl-portal/internal/league"
	"github.com/codr1/axl-portal/internal/session"
	eventstempl "github.com/codr1/axl-portal/internal/templates/components/events"
	"github.com/codr1/axl-portal/internal/templates/components/home"
	"github.com/codr1/axl-portal/internal/templates/components/ui"
)

type Backend interface {
	GetEvent(ctx context.Context, eventID string) (*axl.EventResponse, error)
	RegisterTeamToEvent(ctx context.Context, token string, req axl.EventRegistrationRequest) (*axl.EventRegistrationResponse, error)
}

type Deps struct {
	Backend    Backend
	Dashboards player.Dashboards
	Catalog    *league.Catalog
}

var deps Deps

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Deps) {
	deps = d
}

const notFoundHTML = `<section class="mx-auto max-w-md space-y-3 rounded border bg-white p-6 text-center" id="not-found">` +
	`<h1 class="text-xl font-bold">Fecha no encontrada</h1><a class="underline" href="/events">Ver calendario</a></section>`

func notFound(w http.ResponseWriter, r *http.Request) {
	apiutil.RenderPage(w, r, http.StatusNotFound, "No encontrado", ui.Markup(notFoundHTML))
}

// GET /{$}
func HandleHome(w http.ResponseWriter, r *http.Request) {
	apiutil.RenderPage(w, r, http.StatusOK, "Inicio", home.Home(deps.Catalog))
}

// GET /events
func HandleEvents(w http.ResponseWriter, r *http.Request) {
	apiutil.RenderPage(w, r, http.StatusOK, deps.Catalog.Title, home.Events(deps.Catalog))
}

// GET /events/{slug}
func HandleEventDetail(w http.ResponseWriter, r *http.Request) {
	event, err := deps.Catalog.BySlug(r.PathValue("slug"))
	if err != nil || !event.Detailed() {
		notFound(w, r)
		return
	}
	sess, _ := session.FromContext(r.Context())
	apiutil.RenderPage(w, r, http.StatusOK, event.Title, home.EventDetail(event, sess.Authenticated()))
}

// loadRegistration resolves the event, its live backend record and the
// caller's owned teams. It returns false after answering the request itself.
func loadRegistration(w http.ResponseWriter, r *http.Request) (eventstempl.RegisterView, bool) {
	logger := log.Ctx(r.Context())
	sess, _ := session.FromContext(r.Context())

	event, err := deps.Catalog.BySlug(r.PathValue("slug"))
	if err != nil || !event.Registrable() {
		notFound(w, r)
		return eventstempl.RegisterView{}, false
	}
	view := eventstempl.RegisterView{Event: event}

	live, err := deps.Backend.GetEvent(r.Context(), event.BackendEventID)
	if err != nil {
		logger.Warn().Err(err).Str("event_id", event.BackendEventID).Msg("Failed to load event")
		view.Message = apiutil.UserMessage(err, "No se pudo cargar la fecha")
	} else {
		view.Live = live
	}

	p := deps.Dashboards.For(sess)
	if err := p.Activate(r.Context()); err != nil {
		if apiutil.SessionExpired(err) {
			auth.Expire(w, r)
			return view, false
		}
		if view.Message == "" {
			view.Message = apiutil.UserMessage(err, "No se pudieron cargar tus equipos")
		}
	}
	view.Owned = p.State().OwnedTeams
	return view, true
}

func renderRegister(w http.ResponseWriter, r *http.Request, status int, v eventstempl.RegisterView) {
	apiutil.RenderPage(w, r, status, "Inscripción · "+v.Event.Title, eventstempl.Register(v))
}

// GET /player/events/{slug}/register
func HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	view, ok := loadRegistration(w, r)
	if !ok {
		return
	}
	if len(view.Owned) == 1 {
		view.Form.TeamID = view.Owned[0].TeamID
	}
	renderRegister(w, r, http.StatusOK, view)
}

// POST /player/events/{slug}/register
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	sess, _ := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	view, ok := loadRegistration(w, r)
	if !ok {
		return
	}
	view.Form = forms.ParseEventRegistration(r.PostForm)
	if view.Live == nil {
		renderRegister(w, r, http.StatusBadGateway, view)
		return
	}
	if errs := view.Form.Validate(view.Owned, view.Categories(), view.Open()); errs.Any() {
		view.Errors = errs
		renderRegister(w, r, http.StatusUnprocessableEntity, view)
		return
	}

	resp, err := deps.Backend.RegisterTeamToEvent(r.Context(), sess.Token, view.Form.Request(view.Event.BackendEventID))
	if err != nil {
		if apiutil.SessionExpired(err) {
			auth.Expire(w, r)
			return
		}
		logger.Warn().Err(err).
			Str("event_id", view.Event.BackendEventID).
			Str("team_id", view.Form.TeamID).
			Msg("Event registration failed")
		status := http.StatusBadGateway
		var remote *axl.RemoteError
		if errors.As(err, &remote) && remote.Status == http.StatusConflict {
			status = http.StatusConflict
		}
		view.Message = apiutil.UserMessage(err, "No se pudo inscribir al equipo")
		renderRegister(w, r, status, view)
		return
	}

	logger.Info().
		Str("event_id", view.Event.BackendEventID).
		Str("team_id", view.Form.TeamID).
		Str("category", view.Form.Category).
		Str("registration_id", ui.Deref(resp.RegistrationID)).
		Msg("Team registered to event")

	view.Confirmed = resp.Message
	if view.Confirmed == "" {
		view.Confirmed = "Tu equipo quedó inscripto en " + view.Form.Category + "."
	}
	renderRegister(w, r, http.StatusOK, view)
}
