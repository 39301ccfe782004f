package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/qaanoonAI/legal-ocr-service/internal/aggregate"
	"github.com/qaanoonAI/legal-ocr-service/internal/backend"
	"github.com/qaanoonAI/legal-ocr-service/internal/classifier"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

// PageSource provides per-page embedded text for a document.
type PageSource interface {
	PageCount() int
	PageText(pageIndex int) (string, error)
}

// Stats counts how each page of a smart extraction was resolved.
type Stats struct {
	DirectPages int `json:"direct_pages"`
	OCRPages    int `json:"ocr_pages"`
	FailedPages int `json:"failed_pages"`
}

// SmartExtractor extracts a document page by page, using the embedded text
// where the classifier trusts it and falling back to an OCR adapter where
// it does not. A page whose OCR attempt fails falls back to its direct
// text rather than being dropped.
type SmartExtractor struct {
	classifier *classifier.Classifier
	ocr        backend.Adapter // nil when no OCR backend is configured
	aggregator *aggregate.Aggregator
	dpi        int
}

func NewSmartExtractor(cls *classifier.Classifier, ocr backend.Adapter, agg *aggregate.Aggregator, dpi int) *SmartExtractor {
	return &SmartExtractor{
		classifier: cls,
		ocr:        ocr,
		aggregator: agg,
		dpi:        dpi,
	}
}

// Extract runs the smart pipeline over a PDF on disk.
func (e *SmartExtractor) Extract(ctx context.Context, pdfPath string, pages []int) (*models.DocumentResult, *Stats, error) {
	source, closer, err := OpenDocument(pdfPath)
	if err != nil {
		return nil, nil, err
	}
	defer closer()
	return e.ExtractSource(ctx, source, pdfPath, pages)
}

// ExtractSource runs the smart pipeline over an already-open document.
func (e *SmartExtractor) ExtractSource(ctx context.Context, source PageSource, pdfPath string, pages []int) (*models.DocumentResult, *Stats, error) {
	started := time.Now()

	total := source.PageCount()
	if pages == nil {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i
		}
	}
	for _, p := range pages {
		if p < 0 || p >= total {
			return nil, nil, fmt.Errorf("page %d out of range (document has %d pages)", p, total)
		}
	}

	stats := &Stats{}
	results := make([]models.ExtractionResult, 0, len(pages))
	for _, idx := range pages {
		results = append(results, e.extractPage(ctx, source, pdfPath, idx, stats))
	}

	doc := e.aggregator.Aggregate("smart", results, time.Since(started).Seconds())
	log.Info().
		Str("pdf", pdfPath).
		Int("direct", stats.DirectPages).
		Int("ocr", stats.OCRPages).
		Int("failed", stats.FailedPages).
		Msg("smart extraction finished")
	return doc, stats, nil
}

func (e *SmartExtractor) extractPage(ctx context.Context, source PageSource, pdfPath string, idx int, stats *Stats) models.ExtractionResult {
	pageStart := time.Now()

	direct, directErr := source.PageText(idx)
	directClean := classifier.CleanArabicText(direct)

	needsOCR := directErr != nil || e.classifier.NeedsOCR(direct)
	if !needsOCR {
		stats.DirectPages++
		return e.directResult(idx, directClean, pageStart)
	}

	if e.ocr != nil {
		if result, ok := e.ocrPage(ctx, pdfPath, idx); ok {
			stats.OCRPages++
			return result
		}
	}

	// OCR unavailable or failed; the direct text, however poor, is all
	// that is left
	if directClean != "" {
		stats.DirectPages++
		return e.directResult(idx, directClean, pageStart)
	}

	stats.FailedPages++
	errMsg := "no text could be extracted"
	if directErr != nil {
		errMsg = fmt.Sprintf("page extraction failed: %v", directErr)
	}
	return models.ExtractionResult{
		PageIndex:      idx,
		Backend:        "smart",
		ProcessingTime: time.Since(pageStart).Seconds(),
		Error:          errMsg,
	}
}

func (e *SmartExtractor) directResult(idx int, text string, started time.Time) models.ExtractionResult {
	return models.ExtractionResult{
		PageIndex:      idx,
		Text:           text,
		WordCount:      models.CountWords(text),
		Confidence:     classifier.QualityScore(text),
		ProcessingTime: time.Since(started).Seconds(),
		Backend:        "smart",
		HasContent:     text != "",
	}
}

// ocrPage extracts one page through the OCR adapter. A false return means
// the attempt produced nothing usable.
func (e *SmartExtractor) ocrPage(ctx context.Context, pdfPath string, idx int) (models.ExtractionResult, bool) {
	report, err := e.ocr.Extract(ctx, backend.Request{
		PDFPath: pdfPath,
		Pages:   []int{idx},
		DPI:     e.dpi,
	})
	if err != nil {
		log.Warn().Int("page", idx).Err(err).Msg("ocr fallback failed, keeping direct text")
		return models.ExtractionResult{}, false
	}
	if len(report.PageResults) == 0 {
		return models.ExtractionResult{}, false
	}
	result := report.PageResults[0]
	if result.Error != "" || !result.HasContent {
		return models.ExtractionResult{}, false
	}
	result.Backend = "smart"
	return result, true
}

// OpenDocument adapts a PDF on disk to a PageSource.
func OpenDocument(pdfPath string) (PageSource, func() error, error) {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open document %s: %w", pdfPath, err)
	}
	return &pdfSource{reader: reader}, f.Close, nil
}

type pdfSource struct {
	reader *pdf.Reader
}

func (s *pdfSource) PageCount() int { return s.reader.NumPage() }

func (s *pdfSource) PageText(pageIndex int) (string, error) {
	page := s.reader.Page(pageIndex + 1)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not readable", pageIndex)
	}
	return page.GetPlainText(nil)
}
