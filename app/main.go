package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veslov/newspulse/app/api"
	"github.com/veslov/newspulse/app/cfg"
	"github.com/veslov/newspulse/app/database"
	"github.com/veslov/newspulse/app/ingest"
	"github.com/veslov/newspulse/app/intent"
	"github.com/veslov/newspulse/app/news"
	"github.com/veslov/newspulse/app/summary"
	"github.com/veslov/newspulse/app/tasks"
	"github.com/veslov/newspulse/app/trending"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting NewsPulse server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	articleRepo := database.NewArticleRepository(db)
	interactionRepo := database.NewInteractionRepository(db)

	loader := ingest.NewLoader(articleRepo)
	loaded, err := loader.Load(appCfg.DataFile)
	if err != nil {
		slog.Error("Failed to load article data file", "file", appCfg.DataFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Article dataset loaded", "file", appCfg.DataFile, "count", loaded)

	vocab := intent.DefaultVocabulary()
	if appCfg.VocabFile != "" {
		vocab, err = intent.LoadVocabulary(appCfg.VocabFile)
		if err != nil {
			slog.Error("Failed to load vocabulary file", "file", appCfg.VocabFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Vocabulary loaded", "file", appCfg.VocabFile)
	}

	var llmClassifier intent.Classifier
	if appCfg.LLMAPIKey != "" {
		llmClassifier = intent.NewLLMClassifier(appCfg.LLMAPIKey, appCfg.LLMModel, vocab)
		slog.Info("LLM query classification enabled", "model", appCfg.LLMModel)
	} else {
		slog.Info("LLM query classification disabled, using rule-based classifier (LLM_API_KEY not set)")
	}
	router := intent.NewRouter(llmClassifier, intent.NewRuleClassifier(vocab),
		time.Duration(appCfg.LLMTimeoutSeconds)*time.Second)

	summarizer := summary.New(appCfg.LLMAPIKey, appCfg.LLMModel)

	engine := trending.NewEngine(articleRepo, interactionRepo, trending.Options{
		Window:   time.Duration(appCfg.TrendingWindowHours) * time.Hour,
		HalfLife: time.Duration(appCfg.TrendingHalfLife * float64(time.Hour)),
	})
	cache := trending.NewCache(time.Duration(appCfg.TrendingTTLSeconds)*time.Second,
		appCfg.TrendingCacheEntries, appCfg.TrendingPrecision)

	service := news.NewService(articleRepo, interactionRepo, router, engine, cache)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(articleRepo, interactionRepo, summarizer, cache)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(service, articleRepo, interactionRepo, cache, loader, summarizer, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
