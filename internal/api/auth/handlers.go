// internal/api/auth/handlers.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/axl-portal/internal/api/apiutil"
	"github.com/codr1/axl-portal/internal/api/htmx"
	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/flash"
	"github.com/codr1/axl-portal/internal/forms"
	"github.com/codr1/axl-portal/internal/ratelimit"
	"github.com/codr1/axl-portal/internal/session"
	authtempl "github.com/codr1/axl-portal/internal/templates/components/auth"
)

type Backend interface {
	Login(ctx context.Context, req axl.LoginRequest) (*axl.LoginResponse, error)
	Register(ctx context.Context, req axl.RegisterRequest) (*axl.RegisterResponse, error)
}

type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, p session.Params) (*session.Session, error)
	Destroy(ctx context.Context, w http.ResponseWriter, sess *session.Session) error
}

// Providers forgets cached dashboard data for ended sessions.
type Providers interface {
	Drop(sessionID string)
	DropUser(userID, keepSessionID string) int
}

type Deps struct {
	Backend    Backend
	Sessions   Sessions
	Providers  Providers
	Limiter    *ratelimit.Limiter
	TrustProxy bool
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

// GET /login
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok && sess.Authenticated() {
		http.Redirect(w, r, "/player", http.StatusSeeOther)
		return
	}
	apiutil.RenderPage(w, r, http.StatusOK, "Iniciar Sesión", authtempl.Login(authtempl.LoginView{}))
}

// POST /login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := forms.ParseLogin(r.PostForm)
	view := authtempl.LoginView{Form: form}
	if errs := form.Validate(); errs.Any() {
		view.Errors = errs
		apiutil.RenderPage(w, r, http.StatusUnprocessableEntity, "Iniciar Sesión", authtempl.Login(view))
		return
	}

	ip := ratelimit.ClientIP(r, deps.TrustProxy)
	if deps.Limiter != nil {
		if res := deps.Limiter.CheckLogin(form.Login, ip); !res.Allowed {
			ratelimit.LogRateLimitExceeded("login", form.Login, ip, res.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			view.Message = tooManyAttempts(res.RetryAfter)
			apiutil.RenderPage(w, r, http.StatusTooManyRequests, "Iniciar Sesión", authtempl.Login(view))
			return
		}
		deps.Limiter.RecordLoginAttempt(ip)
	}

	resp, err := deps.Backend.Login(r.Context(), form.Request())
	if err != nil {
		logger.Warn().Err(err).Str("login", ratelimit.SanitizeIdentifier(form.Login)).Msg("Login rejected")
		if deps.Limiter != nil && rejectedCredentials(err) {
			if deps.Limiter.RecordLoginFailure(form.Login) {
				ratelimit.LogRateLimitExceeded("login", form.Login, ip, "lockout_started")
			}
		}
		view.Message = apiutil.UserMessage(err, "No se pudo iniciar sesión")
		apiutil.RenderPage(w, r, http.StatusUnauthorized, "Iniciar Sesión", authtempl.Login(view))
		return
	}
	if deps.Limiter != nil {
		deps.Limiter.ResetLogin(form.Login)
	}

	sess, err := deps.Sessions.Create(r.Context(), w, session.Params{
		Token:    resp.Token,
		UserID:   resp.User.UserID,
		Username: resp.User.Username,
		Role:     resp.User.Role,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if deps.Providers != nil {
		// Create replaced the user's earlier sessions.
		if n := deps.Providers.DropUser(sess.UserID, sess.ID); n > 0 {
			logger.Info().Int("providers", n).Str("user_id", sess.UserID).Msg("Dropped replaced sessions")
		}
	}
	logger.Info().Str("session_id", sess.ID).Str("user_id", sess.UserID).Msg("User logged in")
	flash.Set(w, flash.Success(fmt.Sprintf("¡Hola, %s!", sess.Username)))
	htmx.Redirect(w, r, "/player")
}

// GET /register
func HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	apiutil.RenderPage(w, r, http.StatusOK, "Crear Cuenta", authtempl.Register(authtempl.RegisterView{}))
}

// POST /register
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := forms.ParseRegister(r.PostForm)
	errs := form.Validate(deps.Now())
	view := authtempl.RegisterView{Form: form, Errors: errs}
	if errs.Any() {
		apiutil.RenderPage(w, r, http.StatusUnprocessableEntity, "Crear Cuenta", authtempl.Register(view))
		return
	}

	ip := ratelimit.ClientIP(r, deps.TrustProxy)
	if deps.Limiter != nil {
		if res := deps.Limiter.CheckRegister(ip); !res.Allowed {
			ratelimit.LogRateLimitExceeded("register", form.Email, ip, res.Reason)
			view.Message = tooManyAttempts(res.RetryAfter)
			apiutil.RenderPage(w, r, http.StatusTooManyRequests, "Crear Cuenta", authtempl.Register(view))
			return
		}
		deps.Limiter.RecordRegister(ip)
	}

	resp, err := deps.Backend.Register(r.Context(), form.Request())
	if err != nil {
		logger.Warn().Err(err).Msg("Registration rejected")
		view.Message = apiutil.UserMessage(err, "No se pudo crear la cuenta")
		apiutil.RenderPage(w, r, http.StatusBadRequest, "Crear Cuenta", authtempl.Register(view))
		return
	}

	logger.Info().Str("user_id", resp.User.UserID).Msg("Account registered")
	flash.Set(w, flash.Success("Cuenta creada. Ya podés iniciar sesión."))
	htmx.Redirect(w, r, "/login")
}

// POST /logout. Local only: the backend is not told.
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	endSession(w, r)
	htmx.Redirect(w, r, "/login")
}

// Expire ends a session the backend no longer accepts and sends the user
// to log in again.
func Expire(w http.ResponseWriter, r *http.Request) {
	endSession(w, r)
	flash.Set(w, flash.Info("Tu sesión expiró. Iniciá sesión de nuevo."))
	htmx.Redirect(w, r, "/login")
}

func endSession(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	sess, _ := session.FromContext(r.Context())
	if err := deps.Sessions.Destroy(r.Context(), w, sess); err != nil {
		logger.Error().Err(err).Msg("Failed to destroy session")
	}
	if sess != nil && deps.Providers != nil {
		deps.Providers.Drop(sess.ID)
		logger.Info().Str("session_id", sess.ID).Msg("Session ended")
	}
}

func rejectedCredentials(err error) bool {
	var remote *axl.RemoteError
	if !errors.As(err, &remote) {
		return false
	}
	return remote.Status == http.StatusUnauthorized || remote.Status == http.StatusBadRequest
}

func tooManyAttempts(retry time.Duration) string {
	minutes := int(math.Ceil(retry.Minutes()))
	if minutes <= 1 {
		return "Demasiados intentos. Probá de nuevo en un minuto."
	}
	return fmt.Sprintf("Demasiados intentos. Probá de nuevo en %d minutos.", minutes)
}
