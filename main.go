package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medsafe/interactions-api/config"
	"github.com/medsafe/interactions-api/data"
	"github.com/medsafe/interactions-api/generator"
	"github.com/medsafe/interactions-api/handlers"
	"github.com/medsafe/interactions-api/logging"
	"github.com/medsafe/interactions-api/rxnav"
	"github.com/medsafe/interactions-api/scheduler"
	"github.com/medsafe/interactions-api/server"
	"github.com/medsafe/interactions-api/validation"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogLevel, cfg.LogRetentionWeeks)

	openAI, err := generator.NewOpenAIClient(generator.Config{
		APIKey:            cfg.OpenAIAPIKey,
		Model:             cfg.OpenAIModel,
		BaseURL:           cfg.OpenAIBaseURL,
		Timeout:           time.Duration(cfg.GeneratorTimeoutSecs) * time.Second,
		MaxTokens:         cfg.GeneratorMaxTokens,
		Temperature:       cfg.GeneratorTemperature,
		RequestsPerMinute: cfg.GeneratorRPM,
	})
	if err != nil {
		logging.Error("Failed to create completion client", "error", err)
		os.Exit(1)
	}

	vocabulary := rxnav.NewClient(cfg.RxNavBaseURL)
	codeCache := data.NewCodeCache(cfg.CodeCacheMaxEntries)
	validator := validation.NewInputValidator()

	handler := handlers.NewHTTPHandler(openAI, vocabulary, codeCache, validator)
	srv := server.NewServer(cfg, handler)

	sweeper := scheduler.NewCacheSweeper(codeCache, vocabulary)
	if err := sweeper.Start(); err != nil {
		logging.Error("Failed to start cache sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
}
