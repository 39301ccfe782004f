package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qaanoonAI/legal-ocr-service/internal/aggregate"
	"github.com/qaanoonAI/legal-ocr-service/internal/backend"
	"github.com/qaanoonAI/legal-ocr-service/internal/compare"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/render"
)

var (
	configPath string
	verbose    bool
)

// pipeline bundles everything the commands share.
type pipeline struct {
	config       *models.Config
	registry     *backend.Registry
	aggregator   *aggregate.Aggregator
	orchestrator *compare.Orchestrator
}

func buildPipeline() (*pipeline, error) {
	config, err := models.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	renderer := render.New(config.Backends.Tesseract.Enhance)
	registry := backend.NewRegistry(config, renderer)
	aggregator := aggregate.New(config.Scoring)
	orchestrator := compare.NewOrchestrator(registry, aggregator, compare.NewScorer(config.Scoring))

	return &pipeline{
		config:       config,
		registry:     registry,
		aggregator:   aggregator,
		orchestrator: orchestrator,
	}, nil
}

var rootCmd = &cobra.Command{
	Use:   "qadocr",
	Short: "Arabic legal document OCR toolkit",
	Long: `qadocr extracts text from Arabic legal PDFs and benchmarks OCR
backends against each other on the same document.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(backendsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
