package aggregate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

// Aggregator turns per-page extraction results into a document-level view
// with legal-document classification.
type Aggregator struct {
	typeConfidenceDivisor float64
}

func New(cfg models.ScoringConfig) *Aggregator {
	divisor := cfg.TypeConfidenceDivisor
	if divisor <= 0 {
		divisor = 10
	}
	return &Aggregator{typeConfidenceDivisor: divisor}
}

// Aggregate assembles a DocumentResult from page results. Pages are
// re-sorted to ascending page_index before joining so the reading order of
// full_text never depends on how the results were collected. Pages without
// content stay in the result for auditing but are skipped in the join.
func (a *Aggregator) Aggregate(backend string, pages []models.ExtractionResult, elapsed float64) *models.DocumentResult {
	sorted := make([]models.ExtractionResult, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PageIndex < sorted[j].PageIndex
	})

	var parts []string
	var confSum float64
	confPages := 0
	for _, p := range sorted {
		if p.HasContent {
			parts = append(parts, p.Text)
		}
		if p.Error == "" && p.HasContent {
			confSum += p.Confidence
			confPages++
		}
	}
	fullText := strings.Join(parts, "\n\n")

	result := &models.DocumentResult{
		Backend:         backend,
		Pages:           sorted,
		FullText:        fullText,
		TotalPages:      len(sorted),
		TotalWords:      models.CountWords(fullText),
		TotalCharacters: utf8.RuneCountInString(fullText),
		ProcessingTime:  elapsed,
	}
	if confPages > 0 {
		result.OverallConfidence = confSum / float64(confPages)
	}

	analysis := a.AnalyzeDocumentType(fullText)
	result.DocumentType = analysis.DocumentType
	result.TypeConfidence = analysis.TypeConfidence
	result.LegalTermsFound = analysis.TermsFound
	result.ArticleCount = analysis.ArticleCount
	result.ContainsDates = analysis.ContainsDates

	return result
}

// FromReport aggregates a backend adapter's report.
func (a *Aggregator) FromReport(report *models.ExtractionReport) *models.DocumentResult {
	return a.Aggregate(report.Backend, report.PageResults, report.ProcessingTime)
}
