package services

import (
	"fmt"
	"sort"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationWarning represents a non-critical issue
type ValidationWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is the response from validation
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	NeedsReview bool                `json:"needs_review"`
	Errors      []ValidationError   `json:"errors"`
	Warnings    []ValidationWarning `json:"warnings"`
}

// ReportValidator checks a finished comparison report against its
// structural invariants. Findings flag suspect reports for review; they
// never block delivery.
type ReportValidator struct{}

func NewReportValidator() *ReportValidator {
	return &ReportValidator{}
}

// Validate runs all invariant checks over a comparison report.
func (v *ReportValidator) Validate(report *models.ComparisonReport) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	successful := make(map[string]bool)
	for name, outcome := range report.IndividualResults {
		if outcome.Failed() {
			continue
		}
		successful[name] = true
		v.validateResult(name, outcome.Result, result)
	}

	v.validateRankingMembership(report, successful, result)
	v.validateRankDensity(report, result)

	if report.Summary.Statistics.TotalBackendsTested != len(successful) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "statistics.total_backends_tested",
			Code:    "statistics_count_mismatch",
			Message: fmt.Sprintf("statistics count %d, successful backends %d", report.Summary.Statistics.TotalBackendsTested, len(successful)),
		})
	}

	result.Valid = len(result.Errors) == 0
	result.NeedsReview = len(result.Warnings) > 0
	return result
}

// validateResult checks one backend's DocumentResult.
func (v *ReportValidator) validateResult(name string, doc *models.DocumentResult, result *ValidationResult) {
	if doc.OverallConfidence < 0 || doc.OverallConfidence > 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   name + ".overall_confidence",
			Code:    "confidence_out_of_range",
			Message: fmt.Sprintf("confidence %f outside [0,1]", doc.OverallConfidence),
		})
	}

	if !sort.SliceIsSorted(doc.Pages, func(i, j int) bool {
		return doc.Pages[i].PageIndex < doc.Pages[j].PageIndex
	}) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   name + ".pages",
			Code:    "pages_out_of_order",
			Message: "page results not in ascending page order",
		})
	}

	for _, page := range doc.Pages {
		if page.Confidence < 0 || page.Confidence > 1 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("%s.pages[%d].confidence", name, page.PageIndex),
				Code:    "confidence_out_of_range",
				Message: fmt.Sprintf("confidence %f outside [0,1]", page.Confidence),
			})
		}
		if page.WordCount != models.CountWords(page.Text) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   fmt.Sprintf("%s.pages[%d].word_count", name, page.PageIndex),
				Code:    "word_count_mismatch",
				Message: fmt.Sprintf("word_count %d does not match text (%d words)", page.WordCount, models.CountWords(page.Text)),
			})
		}
	}

	if doc.TotalWords != models.CountWords(doc.FullText) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   name + ".total_words",
			Code:    "word_count_mismatch",
			Message: fmt.Sprintf("total_words %d does not match full_text (%d words)", doc.TotalWords, models.CountWords(doc.FullText)),
		})
	}
}

// validateRankingMembership ensures only successful backends are ranked.
func (v *ReportValidator) validateRankingMembership(report *models.ComparisonReport, successful map[string]bool, result *ValidationResult) {
	check := func(field, backend string) {
		if !successful[backend] {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Code:    "failed_backend_ranked",
				Message: fmt.Sprintf("backend %q is ranked but has no successful result", backend),
			})
		}
	}
	for _, e := range report.Summary.PerformanceRanking {
		check("performance_ranking", e.Backend)
	}
	for _, e := range report.Summary.AccuracyRanking {
		check("accuracy_ranking", e.Backend)
	}
	for _, e := range report.Summary.SpeedRanking {
		check("speed_ranking", e.Backend)
	}
}

// validateRankDensity ensures ranks run 1..n without gaps.
func (v *ReportValidator) validateRankDensity(report *models.ComparisonReport, result *ValidationResult) {
	checkRanks := func(field string, ranks []int) {
		for i, rank := range ranks {
			if rank != i+1 {
				result.Errors = append(result.Errors, ValidationError{
					Field:   field,
					Code:    "rank_sequence_broken",
					Message: fmt.Sprintf("rank at position %d is %d", i, rank),
				})
				return
			}
		}
	}

	perf := make([]int, len(report.Summary.PerformanceRanking))
	for i, e := range report.Summary.PerformanceRanking {
		perf[i] = e.Rank
	}
	checkRanks("performance_ranking", perf)

	acc := make([]int, len(report.Summary.AccuracyRanking))
	for i, e := range report.Summary.AccuracyRanking {
		acc[i] = e.Rank
	}
	checkRanks("accuracy_ranking", acc)

	speed := make([]int, len(report.Summary.SpeedRanking))
	for i, e := range report.Summary.SpeedRanking {
		speed[i] = e.Rank
	}
	checkRanks("speed_ranking", speed)
}
