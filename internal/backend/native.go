package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/qaanoonAI/legal-ocr-service/internal/classifier"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

// NativeAdapter reads the PDF's embedded text layer directly. It is the
// fastest backend and the only one with no external requirements, but it
// returns nothing useful for scanned documents.
type NativeAdapter struct{}

func NewNativeAdapter() *NativeAdapter {
	return &NativeAdapter{}
}

func (a *NativeAdapter) Name() string { return "native" }

func (a *NativeAdapter) Extract(ctx context.Context, req Request) (*models.ExtractionReport, error) {
	started := time.Now()

	pages, err := resolvePages(req.PDFPath, req.Pages)
	if err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(req.PDFPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open document: %w", err)
	}
	defer f.Close()

	results := make([]models.ExtractionResult, 0, len(pages))
	for _, idx := range pages {
		pageStart := time.Now()

		// reader pages are 1-based
		page := reader.Page(idx + 1)
		if page.V.IsNull() {
			results = append(results, errorResult(a.Name(), idx, pageStart, fmt.Errorf("page %d not readable", idx)))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			results = append(results, errorResult(a.Name(), idx, pageStart, fmt.Errorf("text extraction failed: %w", err)))
			continue
		}

		cleaned := classifier.CleanArabicText(text)
		results = append(results, pageResult(a.Name(), idx, cleaned, classifier.QualityScore(cleaned), pageStart))
	}

	return buildReport(a.Name(), results, started), nil
}
