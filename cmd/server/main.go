package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qaanoonAI/legal-ocr-service/api"
	"github.com/qaanoonAI/legal-ocr-service/internal/aggregate"
	"github.com/qaanoonAI/legal-ocr-service/internal/auth"
	"github.com/qaanoonAI/legal-ocr-service/internal/backend"
	"github.com/qaanoonAI/legal-ocr-service/internal/classifier"
	"github.com/qaanoonAI/legal-ocr-service/internal/compare"
	"github.com/qaanoonAI/legal-ocr-service/internal/db"
	"github.com/qaanoonAI/legal-ocr-service/internal/extract"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/render"
	"github.com/qaanoonAI/legal-ocr-service/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	config, err := models.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize JWT
	if err := auth.Init(config.Auth.JWTSecret); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth")
	}
	log.Info().Msg("JWT authentication initialized")

	// Initialize database connection pool
	if err := db.Init(); err != nil {
		log.Warn().Err(err).Msg("database not available, comparisons will not be persisted")
	} else {
		defer db.Close()
	}

	// Initialize MinIO storage
	if err := storage.Init(); err != nil {
		log.Warn().Err(err).Msg("MinIO storage not available, documents will not be archived")
	} else {
		log.Info().Msg("MinIO storage initialized")
	}

	// Assemble the extraction pipeline
	renderer := render.New(config.Backends.Tesseract.Enhance)
	registry := backend.NewRegistry(config, renderer)
	aggregator := aggregate.New(config.Scoring)
	orchestrator := compare.NewOrchestrator(registry, aggregator, compare.NewScorer(config.Scoring))

	var ocrFallback backend.Adapter
	if adapter, ok := registry.Get("tesseract"); ok {
		ocrFallback = adapter
	}
	extractor := extract.NewSmartExtractor(
		classifier.New(config.Classifier),
		ocrFallback,
		aggregator,
		config.Comparison.DPI,
	)

	// Create API handler
	handler := api.NewHandler(config, registry, orchestrator, extractor)
	router := handler.SetupRoutes()

	// Add login endpoint
	router.HandleFunc("/api/login", auth.LoginHandler(config.Auth.Accounts)).Methods("POST")

	// Wrap router with JWT middleware (skips /health and /api/login)
	protectedRouter := auth.JWTMiddleware(router)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Info().
		Str("addr", addr).
		Strs("backends", registry.Names()).
		Bool("database", db.Pool != nil).
		Bool("storage", storage.Client != nil).
		Msg("starting legal OCR comparison service")
	log.Info().Msg("  POST /api/login        - Authenticate")
	log.Info().Msg("  POST /api/compare      - Compare OCR backends on a PDF (requires JWT)")
	log.Info().Msg("  POST /api/extract      - Smart per-page extraction (requires JWT)")
	log.Info().Msg("  GET  /api/comparisons  - List stored comparisons (requires JWT)")
	log.Info().Msg("  GET  /api/comparison/{id} - Stored comparison report (requires JWT)")
	log.Info().Msg("  GET  /api/backends     - Backend inventory (requires JWT)")
	log.Info().Msg("  GET  /health           - Health check")

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
