package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/safeplate/internal/config"
	"github.com/gosuda/safeplate/internal/notify/slack"
	"github.com/gosuda/safeplate/internal/onboarding"
	"github.com/gosuda/safeplate/internal/server"
	"github.com/gosuda/safeplate/internal/store/objectstore"
	"github.com/gosuda/safeplate/internal/store/postgres"
	redisstore "github.com/gosuda/safeplate/internal/store/redis"
)

func main() {
	setupLogging()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "token" {
		err = runToken(os.Args[2:])
	} else {
		err = run()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("safeplate failed")
	}
}

// setupLogging configures the global logger from SAFEPLATE_LOG_LEVEL and
// SAFEPLATE_LOG_FORMAT ("text" for console output, JSON otherwise).
func setupLogging() {
	level, parseErr := zerolog.ParseLevel(os.Getenv("SAFEPLATE_LOG_LEVEL"))
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("SAFEPLATE_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Apply schema migrations before the pool is opened.
	if err := postgres.Migrate(cfg.Database.URL()); err != nil {
		return err
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// Connect to the object store and make sure the bucket exists.
	blobs, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		UsePathStyle:  cfg.Storage.UsePathStyle,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return err
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		return err
	}

	opts := []onboarding.Option{
		onboarding.WithLocker(pubsub.Locker(), cfg.Onboarding.LockTTL),
		onboarding.WithAudit(store.Audit()),
		onboarding.WithEvents(pubsub),
	}
	if cfg.Slack.BotToken != "" {
		opts = append(opts, onboarding.WithNotifier(slack.NewFromToken(cfg.Slack.BotToken, cfg.Slack.ReviewChannel)))
		log.Info().Str("channel", cfg.Slack.ReviewChannel).Msg("Slack review notifications enabled")
	}

	svc := onboarding.New(blobs, store.Businesses(), store.TeamMembers(), store.FacilityPhotos(), opts...)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, pubsub, blobs, svc)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
