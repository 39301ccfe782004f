package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/render"
)

// Request asks an adapter to extract text from a set of PDF pages.
// A nil Pages slice means every page of the document.
type Request struct {
	PDFPath string
	Pages   []int // 0-based
	DPI     int
}

// Adapter is the capability every OCR backend implements. Implementations
// are safe for concurrent use and never fail the whole request because of a
// single bad page: page failures come back as ExtractionResults with Error
// set and Confidence 0. An error return means the backend could not process
// the document at all.
type Adapter interface {
	Name() string
	Extract(ctx context.Context, req Request) (*models.ExtractionReport, error)
}

// resolvePages expands a nil page selection to the whole document and
// rejects out-of-range indices.
func resolvePages(pdfPath string, pages []int) ([]int, error) {
	total, err := render.PageCount(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open document: %w", err)
	}
	if pages == nil {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i
		}
		return pages, nil
	}
	for _, p := range pages {
		if p < 0 || p >= total {
			return nil, fmt.Errorf("page %d out of range (document has %d pages)", p, total)
		}
	}
	return pages, nil
}

// errorResult records a failed page with zero confidence.
func errorResult(backend string, pageIndex int, started time.Time, err error) models.ExtractionResult {
	return models.ExtractionResult{
		PageIndex:      pageIndex,
		Backend:        backend,
		ProcessingTime: time.Since(started).Seconds(),
		Error:          err.Error(),
	}
}

// pageResult fills the derived fields of a successful page extraction.
func pageResult(backend string, pageIndex int, text string, confidence float64, started time.Time) models.ExtractionResult {
	return models.ExtractionResult{
		PageIndex:      pageIndex,
		Text:           text,
		WordCount:      models.CountWords(text),
		Confidence:     confidence,
		ProcessingTime: time.Since(started).Seconds(),
		Backend:        backend,
		HasContent:     strings.TrimSpace(text) != "",
	}
}

// buildReport assembles the adapter-level report: full text joins the
// non-empty pages in request order, overall confidence averages the pages
// that produced content.
func buildReport(backend string, results []models.ExtractionResult, started time.Time) *models.ExtractionReport {
	var parts []string
	var confSum float64
	confPages := 0
	totalWords := 0

	for _, r := range results {
		if r.HasContent {
			parts = append(parts, r.Text)
			confSum += r.Confidence
			confPages++
		}
		totalWords += r.WordCount
	}

	report := &models.ExtractionReport{
		Backend:        backend,
		FullText:       strings.Join(parts, "\n\n"),
		PageResults:    results,
		TotalPages:     len(results),
		TotalWords:     totalWords,
		ProcessingTime: time.Since(started).Seconds(),
	}
	if confPages > 0 {
		report.OverallConfidence = confSum / float64(confPages)
	}
	return report
}
