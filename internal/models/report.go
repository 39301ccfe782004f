package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ExtractionResult is the outcome of extracting one page with one backend.
// It is immutable once produced; page failures are recorded in Error with
// Confidence 0 rather than aborting the document.
type ExtractionResult struct {
	PageIndex      int     `json:"page_index"` // 0-based
	Text           string  `json:"text"`
	WordCount      int     `json:"word_count"`
	Confidence     float64 `json:"confidence"`      // 0..1
	ProcessingTime float64 `json:"processing_time"` // seconds
	Backend        string  `json:"backend"`
	HasContent     bool    `json:"has_content"`
	Error          string  `json:"error,omitempty"`
}

// ExtractionReport is what a backend adapter returns for a whole request.
type ExtractionReport struct {
	Backend           string             `json:"backend"`
	FullText          string             `json:"full_text"`
	PageResults       []ExtractionResult `json:"page_results"`
	TotalPages        int                `json:"total_pages"`
	TotalWords        int                `json:"total_words"`
	OverallConfidence float64            `json:"overall_confidence"`
	ProcessingTime    float64            `json:"processing_time"`
}

// DocumentResult is the aggregated, analyzed view of one backend's output
// over a document. Pages are sorted by ascending page_index and full_text
// joins the has_content pages with blank lines, preserving page order.
type DocumentResult struct {
	Backend           string             `json:"backend"`
	Pages             []ExtractionResult `json:"pages"`
	FullText          string             `json:"full_text"`
	TotalPages        int                `json:"total_pages"`
	TotalWords        int                `json:"total_words"`
	TotalCharacters   int                `json:"total_characters"`
	OverallConfidence float64            `json:"overall_confidence"`
	ProcessingTime    float64            `json:"processing_time"`
	DocumentType      string             `json:"document_type"`
	TypeConfidence    float64            `json:"type_confidence"`
	LegalTermsFound   []string           `json:"legal_terms_found,omitempty"`
	ArticleCount      int                `json:"article_count"`
	ContainsDates     bool               `json:"contains_dates"`
}

// BackendOutcome holds either a backend's DocumentResult or the error that
// replaced it. In JSON a failed backend serializes as {"error": "..."} so
// failures stay visible in individual_results without entering rankings.
type BackendOutcome struct {
	Result *DocumentResult
	Err    string
}

func (o BackendOutcome) Failed() bool { return o.Err != "" }

func (o BackendOutcome) MarshalJSON() ([]byte, error) {
	if o.Err != "" {
		return json.Marshal(map[string]string{"error": o.Err})
	}
	return json.Marshal(o.Result)
}

func (o *BackendOutcome) UnmarshalJSON(data []byte) error {
	var failure struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &failure); err == nil && failure.Error != "" {
		o.Err = failure.Error
		o.Result = nil
		return nil
	}
	var result DocumentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	o.Result = &result
	o.Err = ""
	return nil
}

// ComparisonMetadata describes how a comparison run was executed.
type ComparisonMetadata struct {
	PDFPath             string    `json:"pdf_path"`
	PagesProcessed      []int     `json:"pages_processed,omitempty"` // nil means all pages
	BackendsCompared    []string  `json:"backends_compared"`
	TotalComparisonTime float64   `json:"total_comparison_time"`
	Timestamp           time.Time `json:"timestamp"`
	ParallelExecution   bool      `json:"parallel_execution"`
}

// PerformanceEntry ranks a backend by weighted accuracy + speed.
type PerformanceEntry struct {
	Rank             int     `json:"rank"`
	Backend          string  `json:"backend"`
	PerformanceScore float64 `json:"performance_score"`
	Confidence       float64 `json:"confidence"`
	Speed            float64 `json:"speed"` // words per second
}

// AccuracyEntry ranks a backend by confidence.
type AccuracyEntry struct {
	Rank       int     `json:"rank"`
	Backend    string  `json:"backend"`
	Confidence float64 `json:"confidence"`
	TotalWords int     `json:"total_words"`
}

// SpeedEntry ranks a backend by extraction throughput.
type SpeedEntry struct {
	Rank           int     `json:"rank"`
	Backend        string  `json:"backend"`
	WordsPerSecond float64 `json:"words_per_second"`
	ProcessingTime float64 `json:"processing_time"`
}

// ComparisonStatistics summarizes the successful backends of a run.
type ComparisonStatistics struct {
	TotalBackendsTested int     `json:"total_backends_tested"`
	AvgConfidence       float64 `json:"avg_confidence"`
	AvgProcessingTime   float64 `json:"avg_processing_time"`
	AvgWordsExtracted   float64 `json:"avg_words_extracted"`
	BestAccuracy        string  `json:"best_accuracy,omitempty"`
	FastestBackend      string  `json:"fastest_backend,omitempty"`
	BestOverall         string  `json:"best_overall,omitempty"`
}

// ComparisonSummary holds the three rankings plus aggregate statistics.
type ComparisonSummary struct {
	PerformanceRanking []PerformanceEntry   `json:"performance_ranking"`
	AccuracyRanking    []AccuracyEntry      `json:"accuracy_ranking"`
	SpeedRanking       []SpeedEntry         `json:"speed_ranking"`
	Statistics         ComparisonStatistics `json:"statistics"`
}

// ComparisonReport is the full output of one comparison run.
type ComparisonReport struct {
	Metadata          ComparisonMetadata        `json:"comparison_metadata"`
	IndividualResults map[string]BackendOutcome `json:"individual_results"`
	Summary           ComparisonSummary         `json:"comparison_summary"`
}

// CountWords counts whitespace-separated tokens. Every word_count and
// total_words field in the report model is defined in these terms.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
