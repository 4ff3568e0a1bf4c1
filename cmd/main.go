package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"plutus/internal/adapters/config"
	"plutus/internal/bootstrap"
	"plutus/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	container, err := bootstrap.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// HTTP API
	go func() {
		if err := container.HTTPServer.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Export audit batch writer
	container.AuditRepo.Start(ctx)

	// Trade ingestion
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := container.TradeConsumer.Start(ctx); err != nil {
			log.Error("Trade consumer stopped with error", "error", err)
		}
	}()

	// Background workers
	if err := container.WorkerScheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	log.Info("All components started")

	// Block until SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("Received signal %s, shutting down...", sig)

	cancel()
	bootstrap.NewLifecycle().Shutdown(container, &wg, log)
}
