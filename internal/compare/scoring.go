package compare

import (
	"math"
	"sort"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

// Scorer ranks successful backend results. Weights and the division floor
// are policy constants carried in config.
type Scorer struct {
	accuracyWeight float64
	speedWeight    float64
	epsilon        float64
}

func NewScorer(cfg models.ScoringConfig) *Scorer {
	s := &Scorer{
		accuracyWeight: cfg.AccuracyWeight,
		speedWeight:    cfg.SpeedWeight,
		epsilon:        cfg.Epsilon,
	}
	if s.accuracyWeight == 0 && s.speedWeight == 0 {
		s.accuracyWeight = 0.6
		s.speedWeight = 0.4
	}
	if s.epsilon <= 0 {
		s.epsilon = 0.001
	}
	return s
}

type backendMetrics struct {
	name           string
	confidence     float64
	totalWords     int
	processingTime float64
	wordsPerSecond float64
}

// Score builds the three rankings and summary statistics from the
// successful results of a run. Scoring the same input twice yields the
// same summary: candidates start in ascending name order and every sort is
// stable, so ties resolve lexicographically.
func (s *Scorer) Score(results map[string]*models.DocumentResult) models.ComparisonSummary {
	summary := models.ComparisonSummary{
		PerformanceRanking: []models.PerformanceEntry{},
		AccuracyRanking:    []models.AccuracyEntry{},
		SpeedRanking:       []models.SpeedEntry{},
	}
	if len(results) == 0 {
		return summary
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	metrics := make([]backendMetrics, 0, len(names))
	var maxConfidence, maxSpeed float64
	for _, name := range names {
		r := results[name]
		m := backendMetrics{
			name:           name,
			confidence:     r.OverallConfidence,
			totalWords:     r.TotalWords,
			processingTime: r.ProcessingTime,
			wordsPerSecond: float64(r.TotalWords) / math.Max(r.ProcessingTime, s.epsilon),
		}
		maxConfidence = math.Max(maxConfidence, m.confidence)
		maxSpeed = math.Max(maxSpeed, m.wordsPerSecond)
		metrics = append(metrics, m)
	}

	accuracy := make([]backendMetrics, len(metrics))
	copy(accuracy, metrics)
	sort.SliceStable(accuracy, func(i, j int) bool {
		return accuracy[i].confidence > accuracy[j].confidence
	})
	for i, m := range accuracy {
		summary.AccuracyRanking = append(summary.AccuracyRanking, models.AccuracyEntry{
			Rank:       i + 1,
			Backend:    m.name,
			Confidence: m.confidence,
			TotalWords: m.totalWords,
		})
	}

	speed := make([]backendMetrics, len(metrics))
	copy(speed, metrics)
	sort.SliceStable(speed, func(i, j int) bool {
		return speed[i].wordsPerSecond > speed[j].wordsPerSecond
	})
	for i, m := range speed {
		summary.SpeedRanking = append(summary.SpeedRanking, models.SpeedEntry{
			Rank:           i + 1,
			Backend:        m.name,
			WordsPerSecond: m.wordsPerSecond,
			ProcessingTime: m.processingTime,
		})
	}

	confFloor := math.Max(maxConfidence, s.epsilon)
	speedFloor := math.Max(maxSpeed, s.epsilon)
	type scored struct {
		backendMetrics
		score float64
	}
	performance := make([]scored, 0, len(metrics))
	for _, m := range metrics {
		performance = append(performance, scored{
			backendMetrics: m,
			score: s.accuracyWeight*(m.confidence/confFloor) +
				s.speedWeight*(m.wordsPerSecond/speedFloor),
		})
	}
	sort.SliceStable(performance, func(i, j int) bool {
		return performance[i].score > performance[j].score
	})
	for i, m := range performance {
		summary.PerformanceRanking = append(summary.PerformanceRanking, models.PerformanceEntry{
			Rank:             i + 1,
			Backend:          m.name,
			PerformanceScore: m.score,
			Confidence:       m.confidence,
			Speed:            m.wordsPerSecond,
		})
	}

	summary.Statistics = s.statistics(metrics, summary)
	return summary
}

func (s *Scorer) statistics(metrics []backendMetrics, summary models.ComparisonSummary) models.ComparisonStatistics {
	stats := models.ComparisonStatistics{
		TotalBackendsTested: len(metrics),
	}
	if len(metrics) == 0 {
		return stats
	}

	var confSum, timeSum, wordSum float64
	for _, m := range metrics {
		confSum += m.confidence
		timeSum += m.processingTime
		wordSum += float64(m.totalWords)
	}
	n := float64(len(metrics))
	stats.AvgConfidence = confSum / n
	stats.AvgProcessingTime = timeSum / n
	stats.AvgWordsExtracted = wordSum / n

	stats.BestAccuracy = summary.AccuracyRanking[0].Backend
	stats.FastestBackend = summary.SpeedRanking[0].Backend
	stats.BestOverall = summary.PerformanceRanking[0].Backend
	return stats
}
