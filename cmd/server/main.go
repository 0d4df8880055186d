package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/archive"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/llm"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/notify"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/pipeline"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/report"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/scheduler"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/scrape"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/server"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting social listening pipeline")

	// Assemble the pipeline
	scrapeClient := scrape.NewClient(cfg)
	collector := scrape.NewCollector(cfg, scrape.DefaultAdapters(scrapeClient, cfg)...)
	model := llm.NewClient(cfg)
	enhancer := pipeline.NewEnhancer(model, cfg)
	reports := report.NewGenerator(model, cfg)
	runner := pipeline.NewRunner(cfg, collector, enhancer, reports)

	notifier := notify.NewService(cfg)

	var store archive.Store
	if cfg.StorageAccount != "" {
		azStore, err := archive.NewAzureStore(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize archive storage: %v", err)
		}
		store = azStore
	}

	schedulerService := scheduler.NewService(cfg, runner, notifier, store)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	srv := server.New(cfg, runner, notifier, store)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
