package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"olxradar/internal/api"
	"olxradar/internal/config"
	"olxradar/internal/headers"
	"olxradar/internal/monitoring"
	"olxradar/internal/notify"
	"olxradar/internal/radar"
	"olxradar/internal/scheduler"
	"olxradar/internal/scraper"
	"olxradar/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize Dedup Store
	store, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.StoreBackend,
		SQLitePath:  cfg.SQLitePath,
		PostgresURL: cfg.PostgresURL,
		RedisAddr:   cfg.RedisAddr,
	})
	if err != nil {
		logger.Fatal("failed to open dedup store", zap.Error(err))
	}
	defer store.Close()

	// Initialize Monitoring and the fetch layer
	metrics := monitoring.NewMetrics()
	fetcher := scraper.NewHTTPFetcher(time.Duration(cfg.FetchTimeout)*time.Second, headers.NewRotator())

	crawler := scraper.NewPageCrawler(fetcher, cfg.BaseScheme, cfg.BaseHost, logger, metrics)
	details := scraper.NewDetailFetcher(fetcher, cfg.DetailWorkers, logger, metrics)
	batcher := notify.NewBatcher(cfg.ChunkLimit)

	var transports []notify.Transport
	if cfg.EmailSMTPServer != "" {
		transports = append(transports, notify.NewEmailTransport(
			cfg.EmailSMTPServer, cfg.EmailSender, cfg.EmailAppPassword, cfg.EmailReceiver))
	}
	if cfg.TelegramBotToken != "" {
		transports = append(transports, notify.NewTelegramTransport(notify.TelegramOptions{
			BotToken:  cfg.TelegramBotToken,
			ChatID:    cfg.TelegramChatID,
			HardLimit: cfg.TelegramHardLimit,
		}))
	}
	if len(transports) == 0 {
		logger.Warn("no notification transports configured, new listings will only be recorded")
	}

	orchestrator := radar.NewOrchestrator(
		crawler, details, radar.NewDedupFilter(store), store, batcher, transports, logger, metrics)

	runCycle := func() {
		targets, err := radar.LoadTargets(cfg.TargetsFile, logger)
		if err != nil {
			logger.Error("could not load targets", zap.Error(err))
			return
		}
		orchestrator.Run(ctx, targets)
	}

	// A zero interval means one scan cycle and exit, for use under an
	// external cron.
	if cfg.ScanIntervalHours <= 0 {
		runCycle()
		return
	}

	sched := scheduler.New(runCycle, cfg.ScanIntervalHours, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("could not start scheduler", zap.Error(err))
	}

	server := api.NewServer(cfg.ServerPort, store, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start ops server", zap.Error(err))
		}
	}()
	logger.Info("olxradar started", zap.String("port", cfg.ServerPort))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("olxradar exiting")
}
