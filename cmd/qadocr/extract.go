package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qaanoonAI/legal-ocr-service/internal/classifier"
	"github.com/qaanoonAI/legal-ocr-service/internal/extract"
)

var (
	extractPDF     string
	extractPages   []int
	extractOCRName string
	extractOutput  string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a PDF page by page, falling back to OCR where needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline()
		if err != nil {
			return err
		}

		ocr, ok := p.registry.Get(extractOCRName)
		if !ok {
			if reason, unavailable := p.registry.Unavailable()[extractOCRName]; unavailable {
				fmt.Fprintf(os.Stderr, "OCR backend %s unavailable (%s), direct extraction only\n", extractOCRName, reason)
			}
		}

		extractor := extract.NewSmartExtractor(
			classifier.New(p.config.Classifier),
			ocr,
			p.aggregator,
			p.config.Comparison.DPI,
		)

		document, stats, err := extractor.Extract(cmd.Context(), extractPDF, pagesOrNil(extractPages))
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d pages: %d direct, %d via OCR, %d failed\n",
			document.TotalPages, stats.DirectPages, stats.OCRPages, stats.FailedPages)
		fmt.Printf("Document type: %s (confidence %.2f), %d article references\n",
			document.DocumentType, document.TypeConfidence, document.ArticleCount)
		fmt.Printf("Total: %d words, %d characters\n", document.TotalWords, document.TotalCharacters)

		data, err := json.MarshalIndent(map[string]interface{}{
			"document": document,
			"stats":    stats,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("serializing result: %w", err)
		}

		base := strings.TrimSuffix(filepath.Base(extractPDF), filepath.Ext(extractPDF))
		name := fmt.Sprintf("%s_extracted_%s.json", base, time.Now().Format("20060102_150405"))
		path := filepath.Join(extractOutput, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}

		fmt.Printf("Result saved to %s\n", path)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractPDF, "pdf", "", "PDF file to process (required)")
	extractCmd.Flags().IntSliceVar(&extractPages, "pages", nil, "0-based page indices, default all")
	extractCmd.Flags().StringVar(&extractOCRName, "ocr-backend", "tesseract", "backend used for pages that need OCR")
	extractCmd.Flags().StringVar(&extractOutput, "output", ".", "directory for the JSON result")
	extractCmd.MarkFlagRequired("pdf")
}
