package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

func validReport() *models.ComparisonReport {
	doc := &models.DocumentResult{
		Backend: "native",
		Pages: []models.ExtractionResult{
			{PageIndex: 0, Text: "نظام المحاكم", WordCount: 2, Confidence: 0.9, HasContent: true},
			{PageIndex: 1, Text: "مادة 1", WordCount: 2, Confidence: 0.8, HasContent: true},
		},
		FullText:          "نظام المحاكم\n\nمادة 1",
		TotalWords:        4,
		OverallConfidence: 0.85,
		ProcessingTime:    1.2,
	}
	return &models.ComparisonReport{
		IndividualResults: map[string]models.BackendOutcome{
			"native": {Result: doc},
			"broken": {Err: "engine unavailable"},
		},
		Summary: models.ComparisonSummary{
			PerformanceRanking: []models.PerformanceEntry{{Rank: 1, Backend: "native"}},
			AccuracyRanking:    []models.AccuracyEntry{{Rank: 1, Backend: "native"}},
			SpeedRanking:       []models.SpeedEntry{{Rank: 1, Backend: "native"}},
			Statistics:         models.ComparisonStatistics{TotalBackendsTested: 1},
		},
	}
}

func TestValidateCleanReport(t *testing.T) {
	result := NewReportValidator().Validate(validReport())

	assert.True(t, result.Valid)
	assert.False(t, result.NeedsReview)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateConfidenceOutOfRange(t *testing.T) {
	report := validReport()
	doc := report.IndividualResults["native"].Result
	doc.OverallConfidence = 1.5

	result := NewReportValidator().Validate(report)

	assert.False(t, result.Valid)
	assert.Equal(t, "confidence_out_of_range", result.Errors[0].Code)
}

func TestValidatePagesOutOfOrder(t *testing.T) {
	report := validReport()
	doc := report.IndividualResults["native"].Result
	doc.Pages[0], doc.Pages[1] = doc.Pages[1], doc.Pages[0]

	result := NewReportValidator().Validate(report)

	assert.False(t, result.Valid)
	codes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, "pages_out_of_order")
}

func TestValidateWordCountMismatchWarns(t *testing.T) {
	report := validReport()
	report.IndividualResults["native"].Result.TotalWords = 99

	result := NewReportValidator().Validate(report)

	assert.True(t, result.Valid, "word count drift is a warning, not an error")
	assert.True(t, result.NeedsReview)
	assert.Equal(t, "word_count_mismatch", result.Warnings[0].Code)
}

func TestValidateFailedBackendInRanking(t *testing.T) {
	report := validReport()
	report.Summary.SpeedRanking = append(report.Summary.SpeedRanking,
		models.SpeedEntry{Rank: 2, Backend: "broken"})

	result := NewReportValidator().Validate(report)

	assert.False(t, result.Valid)
	codes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, "failed_backend_ranked")
}

func TestValidateRankGap(t *testing.T) {
	report := validReport()
	report.Summary.PerformanceRanking[0].Rank = 3

	result := NewReportValidator().Validate(report)

	assert.False(t, result.Valid)
	assert.Equal(t, "rank_sequence_broken", result.Errors[0].Code)
}

func TestValidateStatisticsCountMismatch(t *testing.T) {
	report := validReport()
	report.Summary.Statistics.TotalBackendsTested = 5

	result := NewReportValidator().Validate(report)

	assert.True(t, result.Valid)
	assert.True(t, result.NeedsReview)
	assert.Equal(t, "statistics_count_mismatch", result.Warnings[0].Code)
}
