package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/api"
	"github.com/imaging-appropriateness-mcp-server/internal/config"
	"github.com/imaging-appropriateness-mcp-server/internal/feedback"
	"github.com/imaging-appropriateness-mcp-server/internal/knowledge"
	"github.com/imaging-appropriateness-mcp-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)

	// Load the criteria dataset and build the engine
	ds, err := knowledge.LoadDataset(cfg.Knowledge.DatasetPath)
	if err != nil {
		log.Fatalf("Failed to load criteria dataset: %v", err)
	}
	base := knowledge.NewBase(logger, ds)

	evaluator, err := service.NewEvaluatorService(logger, base, ds.FactorRules)
	if err != nil {
		log.Fatalf("Failed to build evaluator: %v", err)
	}

	// Open the feedback store if enabled
	var store feedback.Store
	if cfg.Feedback.Enabled {
		store, err = feedback.NewSQLiteStore(cfg.Feedback.DBPath)
		if err != nil {
			log.Fatalf("Failed to open feedback store: %v", err)
		}
		defer store.Close()
	}

	log.Printf("Starting imaging appropriateness server on %s:%d", cfg.Server.Host, cfg.Server.Port)

	// Create server
	server := api.NewServer(configManager, logger, base, evaluator, store)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Server stopped")
}

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	if strings.ToLower(format) == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}
