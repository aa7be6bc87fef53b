// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/axl-portal/internal/api/auth"
	"github.com/codr1/axl-portal/internal/api/events"
	"github.com/codr1/axl-portal/internal/api/player"
	"github.com/codr1/axl-portal/internal/api/teams"
	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/config"
	"github.com/codr1/axl-portal/internal/dashboard"
	"github.com/codr1/axl-portal/internal/db"
	"github.com/codr1/axl-portal/internal/imaging"
	"github.com/codr1/axl-portal/internal/league"
	"github.com/codr1/axl-portal/internal/metrics"
	"github.com/codr1/axl-portal/internal/ratelimit"
	"github.com/codr1/axl-portal/internal/scheduler"
	"github.com/codr1/axl-portal/internal/session"
	"github.com/codr1/axl-portal/internal/upload"
)

func shutdownTimeout() time.Duration {
	if value, ok := os.LookupEnv("SHUTDOWN_TIMEOUT_SECONDS"); ok {
		if i, err := strconv.Atoi(value); err == nil && i > 0 {
			return time.Duration(i) * time.Second
		}
	}
	return 30 * time.Second
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Features.EnableDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func imageOptions(cfg config.UploadConfig) (avatar, logo imaging.Options) {
	avatar = imaging.AvatarOptions()
	avatar.MaxEdge = cfg.AvatarMaxEdge
	avatar.Quality = cfg.Quality

	logo = imaging.LogoOptions()
	logo.Size = cfg.LogoSize
	logo.Quality = cfg.Quality
	return avatar, logo
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	catalog, err := league.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load event catalog")
	}

	m := metrics.Default()
	httpClient := &http.Client{Timeout: cfg.Backend.Timeout()}
	client := axl.NewClient(
		axl.EndpointsFromConfig(cfg.Backend),
		axl.WithHTTPClient(httpClient),
		axl.WithMetrics(m),
	)

	sessions := session.NewManager(database,
		session.WithTTL(cfg.Session.TTL()),
		session.WithSecureCookies(!cfg.IsDevelopment()),
	)
	registry := dashboard.NewRegistry(client, m)

	avatarOpts, logoOpts := imageOptions(cfg.Uploads)
	uploads := upload.NewOrchestrator(client, upload.NewHTTPStorage(httpClient), registry,
		upload.WithImageOptions(avatarOpts, logoOpts),
		upload.WithMetrics(m),
	)

	limiter := ratelimit.New(ratelimit.DefaultConfig())
	defer limiter.Close()
	buckets := ratelimit.NewBuckets(cfg.Uploads.RateLimit, cfg.Uploads.RateBurst, nil)

	auth.InitHandlers(auth.Deps{
		Backend:    client,
		Sessions:   sessions,
		Providers:  registry,
		Limiter:    limiter,
		TrustProxy: cfg.App.TrustProxy,
	})
	player.InitHandlers(player.Deps{
		Backend:    client,
		Dashboards: registry,
		Uploads:    uploads,
		Buckets:    buckets,
		Catalog:    catalog,
	})
	teams.InitHandlers(teams.Deps{
		Backend:    client,
		Dashboards: registry,
		Uploads:    uploads,
		Buckets:    buckets,
	})
	events.InitHandlers(events.Deps{
		Backend:    client,
		Dashboards: registry,
		Catalog:    catalog,
	})

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	cleanup := scheduler.SessionCleanup{Sessions: sessions, Providers: registry, Buckets: buckets}
	if err := scheduler.RegisterSessionCleanup(cfg.Session.CleanupCron, cleanup); err != nil {
		log.Fatal().Err(err).Msg("Failed to register session cleanup")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Create server instance
	server := newServer(cfg, sessions)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout())
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
