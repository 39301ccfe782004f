package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qaanoonAI/legal-ocr-service/internal/compare"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/services"
)

var (
	comparePDF      string
	comparePages    []int
	compareBackends []string
	compareParallel bool
	compareDPI      int
	compareOutput   string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run several OCR backends over one PDF and rank them",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline()
		if err != nil {
			return err
		}

		dpi := compareDPI
		if dpi == 0 {
			dpi = p.config.Comparison.DPI
		}

		report, err := p.orchestrator.Compare(cmd.Context(), compare.Request{
			PDFPath:  comparePDF,
			Pages:    pagesOrNil(comparePages),
			Backends: compareBackends,
			Parallel: compareParallel,
			DPI:      dpi,
		})
		if err != nil {
			return err
		}

		printSummary(report)

		validation := services.NewReportValidator().Validate(report)
		for _, warning := range validation.Warnings {
			fmt.Printf("  warning: %s (%s)\n", warning.Message, warning.Code)
		}
		for _, vErr := range validation.Errors {
			fmt.Printf("  ERROR: %s (%s)\n", vErr.Message, vErr.Code)
		}

		return saveReport(report, compareOutput)
	},
}

func init() {
	compareCmd.Flags().StringVar(&comparePDF, "pdf", "", "PDF file to process (required)")
	compareCmd.Flags().IntSliceVar(&comparePages, "pages", nil, "0-based page indices, default all")
	compareCmd.Flags().StringSliceVar(&compareBackends, "backends", nil, "backends to compare, default all available")
	compareCmd.Flags().BoolVar(&compareParallel, "parallel", true, "run backends concurrently")
	compareCmd.Flags().IntVar(&compareDPI, "dpi", 0, "rasterization DPI")
	compareCmd.Flags().StringVar(&compareOutput, "output", ".", "directory for the JSON report")
	compareCmd.MarkFlagRequired("pdf")
}

func pagesOrNil(pages []int) []int {
	if len(pages) == 0 {
		return nil
	}
	return pages
}

func printSummary(report *models.ComparisonReport) {
	fmt.Printf("\nCompared %d backends in %.2fs (parallel: %v)\n\n",
		len(report.Metadata.BackendsCompared),
		report.Metadata.TotalComparisonTime,
		report.Metadata.ParallelExecution,
	)

	fmt.Println("Overall ranking:")
	for _, entry := range report.Summary.PerformanceRanking {
		fmt.Printf("  %d. %-15s score %.3f  (confidence %.2f, %.1f words/s)\n",
			entry.Rank, entry.Backend, entry.PerformanceScore, entry.Confidence, entry.Speed)
	}

	fmt.Println("\nAccuracy ranking:")
	for _, entry := range report.Summary.AccuracyRanking {
		fmt.Printf("  %d. %-15s confidence %.2f  (%d words)\n",
			entry.Rank, entry.Backend, entry.Confidence, entry.TotalWords)
	}

	fmt.Println("\nSpeed ranking:")
	for _, entry := range report.Summary.SpeedRanking {
		fmt.Printf("  %d. %-15s %.1f words/s  (%.2fs)\n",
			entry.Rank, entry.Backend, entry.WordsPerSecond, entry.ProcessingTime)
	}

	var failed []string
	for name, outcome := range report.IndividualResults {
		if outcome.Failed() {
			failed = append(failed, fmt.Sprintf("%s (%s)", name, outcome.Err))
		}
	}
	if len(failed) > 0 {
		fmt.Printf("\nFailed backends: %s\n", strings.Join(failed, ", "))
	}

	stats := report.Summary.Statistics
	if stats.BestOverall != "" {
		fmt.Printf("\nBest overall: %s   most accurate: %s   fastest: %s\n",
			stats.BestOverall, stats.BestAccuracy, stats.FastestBackend)
	}
}

func saveReport(report *models.ComparisonReport, dir string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing report: %w", err)
	}

	name := fmt.Sprintf("ocr_comparison_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Printf("\nReport saved to %s\n", path)
	return nil
}
