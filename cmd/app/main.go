// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iss-aprs-tracker/internal/config"
	"iss-aprs-tracker/internal/domain/ports/adapter"
	"iss-aprs-tracker/internal/infra/ariss"
	pg "iss-aprs-tracker/internal/infra/db/postgres"
	"iss-aprs-tracker/internal/infra/httpapi"
	"iss-aprs-tracker/internal/infra/logging"
	"iss-aprs-tracker/internal/infra/metrics"
	red "iss-aprs-tracker/internal/infra/redis"
	"iss-aprs-tracker/internal/infra/sched"
	tele "iss-aprs-tracker/internal/infra/telegram"
	"iss-aprs-tracker/internal/infra/tle"
	"iss-aprs-tracker/internal/orbit"
	"iss-aprs-tracker/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (no real Telegram sends)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	lastHeardCache := red.NewLastHeardCache(redisClient, cfg.Redis.TTL.Std())

	// ---- Repositories ----
	subRepo := pg.NewSubscriberRepo(pool)
	activityRepo := pg.NewActivityLogRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Orbital elements ----
	fetcher := tle.NewFetcher(cfg.Elements.SourceURL)
	elemCache := tle.NewCache(cfg.Elements.CacheDir, cfg.Elements.CacheMaxFiles)
	elemStore := tle.NewStore()
	elementsWorker := sched.NewElementsWorker(cfg.Elements, fetcher, elemCache, elemStore, logger)
	if err := elementsWorker.Bootstrap(ctx); err != nil {
		log.Fatalf("orbital elements bootstrap: %v", err)
	}

	predictor := orbit.NewPredictor(orbit.PredictorConfig{
		CoarseStep:    cfg.Predictor.CoarseStep.Std(),
		FineStep:      cfg.Predictor.FineStep.Std(),
		MinElevation:  cfg.Predictor.MinElevation,
		MaxPasses:     cfg.Predictor.MaxPasses,
		MaxElementAge: cfg.Elements.MaxAge.Std(),
	})

	// ---- Telegram ----
	var messenger adapter.Messenger
	if cfg.Runtime.Dev || cfg.Bot.Token == "" {
		messenger = tele.NewNoopMessenger(logger)
	} else {
		messenger, err = tele.NewRealMessenger(cfg.Bot.Token, logger)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
	}
	notifier := tele.NewNotifier(messenger)

	// ---- Use cases ----
	activitySource := ariss.NewClient(cfg.Monitor.FeedURL)
	activityUC := usecase.NewActivityUseCase(activitySource, activityRepo, lastHeardCache, cfg.Monitor.InactivityGap.Std(), logger)
	notifyUC := usecase.NewNotificationUseCase(subRepo, elemStore, predictor, notifier, cfg.Predictor.DefaultThreshold, cfg.Predictor.EvalWorkers, logger)
	subUC := usecase.NewSubscriberUseCase(subRepo, txManager, cfg.Predictor.DefaultThreshold, logger)

	// ---- Workers ----
	go func() {
		if err := elementsWorker.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("elements worker stopped")
		}
	}()
	monitorWorker := sched.NewMonitorWorker(cfg.Monitor.PollInterval.Std(), activityUC, notifyUC, locker, logger)
	go func() {
		if err := monitorWorker.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("monitor worker stopped")
		}
	}()

	// ---- Admin API ----
	apiServer := httpapi.NewServer(cfg.Admin.Port, cfg.Admin.APIKey, subUC, activityUC, elemStore, predictor, logger)
	go func() {
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
