package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fitlive/classroom/internal/adapters/auth"
	router "github.com/fitlive/classroom/internal/adapters/http"
	"github.com/fitlive/classroom/internal/adapters/pg"
	wsignal "github.com/fitlive/classroom/internal/adapters/signal"
	"github.com/fitlive/classroom/internal/app"
	"github.com/fitlive/classroom/internal/config"
	"github.com/fitlive/classroom/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	pool, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	verifier := auth.NewJWTVerifier(cfg.JWTSecret, pg.NewUsers(pool))
	registry := core.NewRegistry()

	lifecycle := &app.Lifecycle{
		Registry:    registry,
		Bookings:    pg.NewBookingStore(pool),
		Classes:     pg.NewClassRecords(pool),
		GracePeriod: cfg.GracePeriod,
	}

	ctl := &wsignal.Controller{
		Lifecycle:  lifecycle,
		Relay:      &app.Relay{Registry: registry},
		ChatLimit:  wsignal.NewChatRateLimiter(10, time.Minute),
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
	}

	r := router.SetupRouter(ctx, cfg, verifier, lifecycle, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("classroom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
