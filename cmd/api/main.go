package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerlift/statement-ingest/internal/api/handlers"
	"github.com/ledgerlift/statement-ingest/internal/api/middleware"
	"github.com/ledgerlift/statement-ingest/internal/config"
	"github.com/ledgerlift/statement-ingest/internal/logger"
	"github.com/ledgerlift/statement-ingest/internal/pipeline"
)

func main() {
	cfg := config.FromEnv()

	port := flag.String("port", cfg.Port, "HTTP server port")
	flag.Parse()

	log := logger.New(cfg.Debug)

	providers := buildProviders(cfg)
	if cfg.DisableExternalCalls {
		log.Warn().Msg("External calls disabled - running in deterministic-only mode")
	} else if len(providers) == 0 {
		log.Warn().Msg("No provider API keys configured - running in deterministic-only mode")
	}

	svc := pipeline.NewService(pipeline.Options{
		DefaultCurrency:      cfg.DefaultCurrency,
		StrictPrivacy:        cfg.StrictPrivacy,
		RedactionWords:       cfg.RedactionWords,
		DisableExternalCalls: cfg.DisableExternalCalls,
		ChunkMaxChars:        cfg.ChunkMaxChars,
		CallTimeout:          cfg.CallTimeout,
	}, providers, log)

	statementsHandler := handlers.NewStatementsHandler(svc, cfg.MaxUploadBytes, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/statements/parse", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.ParseStatement(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", handlers.Health)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(log)(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// buildProviders assembles the ordered provider fallback list from config.
// Gemini is preferred; the chat-completions provider is the fallback.
func buildProviders(cfg config.Config) []pipeline.Provider {
	var providers []pipeline.Provider
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, pipeline.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModels))
	}
	if cfg.ChatAPIKey != "" {
		providers = append(providers,
			pipeline.NewChatAPIProvider("chat-api", cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatModels, cfg.CallTimeout))
	}
	return providers
}
