package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/config"
	"SentimentDashboard/internal/notifier"
	"SentimentDashboard/internal/recorder"
	"SentimentDashboard/internal/scheduler"
	"SentimentDashboard/internal/server"
	"SentimentDashboard/internal/watchlist"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	setupLogOutput(cfg)
	log.Println("[INFO] SentimentDashboard starting...")
	log.Printf("[INFO] backend: %s (classifier %s)", cfg.Backend.BaseURL, cfg.Backend.Classifier)

	// Init collector
	fetcher := collector.NewBackendFetcher(cfg.Backend.BaseURL, cfg.Proxy, cfg.Backend.Timeout, cfg.Params())
	col := collector.NewCollector(fetcher)
	quotes := collector.NewYahooQuoteFetcher(cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			log.Printf("[WARN] create database dir: %v", err)
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init watchlist
	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile, cfg.Watchlist.Tickers)
	if err != nil {
		log.Fatalf("[FATAL] init watchlist: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Telegram notifier
	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[INFO] telegram not configured, digests go to the log")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, quotes, wl, sender, rec)
	if err := sched.Register(cfg.Watchlist.Cron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, sweeping watchlist now")
		go sched.RunSweepNow()
	}

	// Start HTTP server
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.New(col, rec, server.Options{
			AssetsDir:    cfg.Server.AssetsDir,
			FallbackLogo: cfg.Server.FallbackLogo,
			Quotes:       quotes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[INFO] dashboard listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] SentimentDashboard stopped")
}

// setupLogOutput tees the standard logger into a rotating file.
func setupLogOutput(cfg *config.Config) {
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		log.Printf("[WARN] create log dir: %v", err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     14,
		Compress:   true,
	}))
}
