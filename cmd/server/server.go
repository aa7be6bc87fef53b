// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/codr1/axl-portal/internal/api"
	"github.com/codr1/axl-portal/internal/api/auth"
	"github.com/codr1/axl-portal/internal/api/events"
	"github.com/codr1/axl-portal/internal/api/player"
	"github.com/codr1/axl-portal/internal/api/teams"
	"github.com/codr1/axl-portal/internal/config"
)

func newServer(cfg *config.Config, sessions api.SessionLoader) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithSession(sessions),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	// Register routes
	registerRoutes(router, cfg)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// guarded requires a signed-in session.
func guarded(h http.HandlerFunc) http.Handler {
	return api.RequireSession(h)
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Public pages
	mux.HandleFunc("GET /{$}", events.HandleHome)
	mux.HandleFunc("GET /events", events.HandleEvents)
	mux.HandleFunc("GET /events/{slug}", events.HandleEventDetail)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.Features.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Auth routes
	mux.HandleFunc("GET /login", auth.HandleLoginPage)
	mux.HandleFunc("POST /login", auth.HandleLogin)
	mux.HandleFunc("GET /register", auth.HandleRegisterPage)
	mux.HandleFunc("POST /register", auth.HandleRegister)
	mux.Handle("POST /logout", guarded(auth.HandleLogout))

	// Player routes
	mux.Handle("GET /player", guarded(player.HandleDashboard))
	mux.Handle("GET /player/profile", guarded(player.HandleProfilePage))
	mux.Handle("POST /player/profile", guarded(player.HandleProfileUpdate))
	mux.Handle("GET /player/photo", guarded(player.HandlePhotoPage))
	mux.Handle("POST /player/photo", guarded(player.HandlePhotoUpload))
	mux.Handle("POST /player/invitations/{inviteID}/accept", guarded(player.HandleAcceptInvitation))
	mux.Handle("POST /player/invitations/{inviteID}/decline", guarded(player.HandleDeclineInvitation))

	// Team routes
	mux.Handle("GET /player/teams/new", guarded(teams.HandleNewTeamPage))
	mux.Handle("POST /player/teams/new", guarded(teams.HandleCreateTeam))
	mux.Handle("GET /player/teams/{teamID}", guarded(teams.HandleTeam))
	mux.Handle("POST /player/teams/{teamID}/invites", guarded(teams.HandleInvite))
	mux.Handle("GET /player/teams/{teamID}/logo", guarded(teams.HandleLogoPage))
	mux.Handle("POST /player/teams/{teamID}/logo", guarded(teams.HandleLogoUpload))

	// Event registration
	mux.Handle("GET /player/events/{slug}/register", guarded(events.HandleRegisterPage))
	mux.Handle("POST /player/events/{slug}/register", guarded(events.HandleRegister))

	// Static files
	staticDir := cfg.App.StaticDir
	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		http.StripPrefix("/static/", fs).ServeHTTP(w, r)
	}))
}
