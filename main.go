// main.go
//
// Entry point for the daily market guessing server.
// Startup order:
//   1. Config from env / .env, then logger level and format.
//   2. SQLite open + embedded migrations.
//   3. Category table and the value series that supplies each day's answer.
//   4. Session store (sqlite or memory) and the stale-session janitor.
//   5. HTTP server, shut down gracefully on SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/dailyguess/assets"
	"github.com/robalobadob/dailyguess/internal/actual"
	"github.com/robalobadob/dailyguess/internal/auth"
	"github.com/robalobadob/dailyguess/internal/category"
	"github.com/robalobadob/dailyguess/internal/config"
	"github.com/robalobadob/dailyguess/internal/daily"
	"github.com/robalobadob/dailyguess/internal/database"
	"github.com/robalobadob/dailyguess/internal/httpserver"
	"github.com/robalobadob/dailyguess/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer db.Close()

	migrations, err := assets.Migrations()
	if err != nil {
		log.Fatal().Err(err).Msg("load migrations")
	}
	if err := database.Migrate(db, migrations); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	categories, err := category.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("load categories")
	}
	series, err := actual.LoadSeries(cfg.SeriesFile, cfg.DailySalt)
	if err != nil {
		log.Fatal().Err(err).Msg("load value series")
	}
	if err := series.CheckEnterable(categories.List()); err != nil {
		log.Fatal().Err(err).Msg("value series does not fit category keypads")
	}
	for _, c := range categories.List() {
		if series.Len(c.ID) == 0 {
			log.Warn().Str("category", c.ID).Msg("no observations; new games will fail")
		}
	}

	var sessions store.Store
	switch cfg.SessionStore {
	case "memory":
		sessions = store.NewMemoryStore()
	default:
		sessions = store.NewSQLiteStore(db, categories)
	}
	log.Info().Str("store", cfg.SessionStore).Msg("session store ready")

	janitor := store.NewJanitor(sessions, cfg.SessionRetention, log.Logger)
	if err := janitor.Schedule(cfg.JanitorSchedule); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.JanitorSchedule).Msg("schedule janitor")
	}
	janitor.Start()
	defer janitor.Stop()

	srv := httpserver.New(httpserver.Deps{
		Categories:   categories,
		Sessions:     sessions,
		Actuals:      series,
		Charts:       series,
		Results:      daily.NewStore(db),
		Users:        auth.NewUsers(db),
		Signer:       auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL),
		CookieName:   cfg.CookieName,
		ClientOrigin: cfg.ClientOrigin,
		Production:   cfg.Production,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting dailyguess server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}

// setupLogging applies LOG_LEVEL and, when LOG_PRETTY is set, a console writer.
func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("value", cfg.LogLevel).Msg("invalid LOG_LEVEL, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
