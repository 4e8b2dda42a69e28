package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanternhq/lantern/internal/backup"
	"github.com/lanternhq/lantern/internal/cache"
	"github.com/lanternhq/lantern/internal/clients/analyzer"
	"github.com/lanternhq/lantern/internal/clients/twitter"
	"github.com/lanternhq/lantern/internal/config"
	"github.com/lanternhq/lantern/internal/cycles"
	"github.com/lanternhq/lantern/internal/database"
	"github.com/lanternhq/lantern/internal/events"
	"github.com/lanternhq/lantern/internal/modules/automation"
	"github.com/lanternhq/lantern/internal/modules/brands"
	"github.com/lanternhq/lantern/internal/modules/calendar"
	"github.com/lanternhq/lantern/internal/modules/credentials"
	"github.com/lanternhq/lantern/internal/modules/decisions"
	"github.com/lanternhq/lantern/internal/modules/market"
	"github.com/lanternhq/lantern/internal/scheduler"
	"github.com/lanternhq/lantern/internal/server"
	"github.com/lanternhq/lantern/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootstrapLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootstrapLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Lantern")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	eventBus := events.NewManager(log)

	// TTL cache with durable mirror
	mirror := cache.NewMirror(db.Conn())
	store := cache.New(mirror, log)

	// Repositories and services
	brandRepo := brands.NewRepository(db.Conn(), log)
	brandSvc := brands.NewService(brandRepo, log)
	gate := automation.NewService(automation.NewRepository(db.Conn(), log), log)
	decisionRepo := decisions.NewRepository(db.Conn(), log)
	calendarRepo := calendar.NewRepository(db.Conn(), log)

	// Upstream clients
	twitterClient := twitter.NewClient(log)

	var globalCreds *twitter.Credentials
	if cfg.HasGlobalTwitterCredentials() {
		globalCreds = &twitter.Credentials{
			ConsumerKey:    cfg.TwitterConsumerKey,
			ConsumerSecret: cfg.TwitterConsumerSecret,
			AccessToken:    cfg.TwitterAccessToken,
			AccessSecret:   cfg.TwitterAccessSecret,
		}
	} else {
		log.Warn().Msg("No global Twitter credentials configured")
	}

	feedCreds := twitter.Credentials{}
	if globalCreds != nil {
		feedCreds = *globalCreds
	}
	feeds := market.NewTwitterSource(twitterClient, feedCreds)
	ingestor := market.NewIngestor(feeds, feeds, store, log)

	if cfg.AnalyzerURL == "" {
		log.Warn().Msg("No analyzer endpoint configured, brain cycles will fail per tenant")
	}
	analyzerClient := analyzer.NewClient(cfg.AnalyzerURL, cfg.AnalyzerToken, log)

	credResolver := credentials.NewResolver(credentials.NewRepository(db.Conn(), log), globalCreds, log)

	// Cycle engines
	brain := cycles.NewBrainEngine(cycles.BrainEngineConfig{
		Brands:   brandSvc,
		Gate:     gate,
		Market:   ingestor,
		Analyzer: analyzerClient,
		Profiles: analyzerClient,
		Repo:     decisionRepo,
		Events:   eventBus,
		Log:      log,
	})

	publishing := cycles.NewPublishingEngine(cycles.PublishingEngineConfig{
		Brands:    brandSvc,
		Gate:      gate,
		Creds:     credResolver,
		Calendars: calendarRepo,
		Publisher: twitterClient,
		Events:    eventBus,
		Log:       log,
	})

	// Optional snapshot backup target
	var uploader backup.Uploader
	if cfg.BackupEnabled {
		client, err := backup.NewClient(context.Background(),
			cfg.BackupAccountID, cfg.BackupAccessKeyID, cfg.BackupSecretAccessKey, cfg.BackupBucket, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup client")
		}
		uploader = client
	}

	// Scheduler and background jobs
	sched := scheduler.New(log)
	if err := registerJobs(sched, cfg, log, brain, publishing, mirror, decisionRepo, db, uploader, eventBus); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:       cfg.Port,
		Log:        log,
		DB:         db,
		Brain:      brain,
		Publishing: publishing,
		Decisions:  decisionRepo,
		Events:     eventBus,
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	log zerolog.Logger,
	brain *cycles.BrainEngine,
	publishing *cycles.PublishingEngine,
	mirror *cache.Mirror,
	decisionRepo *decisions.Repository,
	db *database.DB,
	uploader backup.Uploader,
	eventBus *events.Manager,
) error {
	if err := sched.AddJob(cfg.BrainCycleSchedule, scheduler.NewBrainCycleJob(brain, log)); err != nil {
		return err
	}
	if err := sched.AddJob(cfg.PublishingCycleSchedule, scheduler.NewPublishingCycleJob(publishing, log)); err != nil {
		return err
	}

	// Maintenance jobs run in the quiet early-morning window
	if err := sched.AddJob("0 15 3 * * *", decisions.NewRetentionJob(decisionRepo, log)); err != nil {
		return err
	}
	if err := sched.AddJob("0 30 3 * * *", cache.NewCleanupJob(mirror, log)); err != nil {
		return err
	}
	return sched.AddJob("0 0 4 * * *", decisions.NewSnapshotJob(decisionRepo, db.Conn(), uploader, eventBus, log))
}
