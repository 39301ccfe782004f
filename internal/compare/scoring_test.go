package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

func docResult(confidence float64, words int, seconds float64) *models.DocumentResult {
	return &models.DocumentResult{
		OverallConfidence: confidence,
		TotalWords:        words,
		ProcessingTime:    seconds,
	}
}

func TestScoreRankings(t *testing.T) {
	scorer := NewScorer(models.ScoringConfig{AccuracyWeight: 0.6, SpeedWeight: 0.4, Epsilon: 0.001})

	results := map[string]*models.DocumentResult{
		"b1": docResult(0.9, 100, 10), // 10 words/sec, most accurate
		"b2": docResult(0.8, 400, 20), // 20 words/sec
		"b3": docResult(0.3, 1200, 30), // 40 words/sec, fastest
	}

	summary := scorer.Score(results)

	require.Len(t, summary.AccuracyRanking, 3)
	assert.Equal(t, "b1", summary.AccuracyRanking[0].Backend)
	assert.Equal(t, "b2", summary.AccuracyRanking[1].Backend)
	assert.Equal(t, "b3", summary.AccuracyRanking[2].Backend)

	require.Len(t, summary.SpeedRanking, 3)
	assert.Equal(t, "b3", summary.SpeedRanking[0].Backend)
	assert.InDelta(t, 40, summary.SpeedRanking[0].WordsPerSecond, 1e-9)
	assert.Equal(t, "b1", summary.SpeedRanking[2].Backend)

	// b2 balances accuracy and speed:
	// b1 = 0.6*(0.9/0.9) + 0.4*(10/40) = 0.70
	// b2 = 0.6*(0.8/0.9) + 0.4*(20/40) ~ 0.733
	// b3 = 0.6*(0.3/0.9) + 0.4*(40/40) = 0.60
	require.Len(t, summary.PerformanceRanking, 3)
	assert.Equal(t, "b2", summary.PerformanceRanking[0].Backend)
	assert.Equal(t, 1, summary.PerformanceRanking[0].Rank)
	assert.InDelta(t, 0.7333, summary.PerformanceRanking[0].PerformanceScore, 0.001)
	assert.Equal(t, "b1", summary.PerformanceRanking[1].Backend)
	assert.Equal(t, "b3", summary.PerformanceRanking[2].Backend)

	stats := summary.Statistics
	assert.Equal(t, 3, stats.TotalBackendsTested)
	assert.Equal(t, "b1", stats.BestAccuracy)
	assert.Equal(t, "b3", stats.FastestBackend)
	assert.Equal(t, "b2", stats.BestOverall)
	assert.InDelta(t, (0.9+0.8+0.3)/3, stats.AvgConfidence, 1e-9)
	assert.InDelta(t, 20, stats.AvgProcessingTime, 1e-9)
	assert.InDelta(t, (100+400+1200)/3.0, stats.AvgWordsExtracted, 1e-9)
}

func TestScoreTieBreaksLexicographically(t *testing.T) {
	scorer := NewScorer(models.ScoringConfig{AccuracyWeight: 0.6, SpeedWeight: 0.4, Epsilon: 0.001})

	results := map[string]*models.DocumentResult{
		"zeta":  docResult(0.8, 200, 10),
		"alpha": docResult(0.8, 200, 10),
		"mid":   docResult(0.8, 200, 10),
	}

	summary := scorer.Score(results)

	want := []string{"alpha", "mid", "zeta"}
	for i, entry := range summary.PerformanceRanking {
		assert.Equal(t, want[i], entry.Backend)
		assert.Equal(t, i+1, entry.Rank)
	}
	for i, entry := range summary.AccuracyRanking {
		assert.Equal(t, want[i], entry.Backend)
	}
	for i, entry := range summary.SpeedRanking {
		assert.Equal(t, want[i], entry.Backend)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	scorer := NewScorer(models.ScoringConfig{AccuracyWeight: 0.6, SpeedWeight: 0.4, Epsilon: 0.001})

	results := map[string]*models.DocumentResult{
		"b1": docResult(0.9, 100, 10),
		"b2": docResult(0.7, 300, 15),
	}

	first := scorer.Score(results)
	second := scorer.Score(results)
	assert.Equal(t, first, second)
}

func TestScoreZeroProcessingTime(t *testing.T) {
	scorer := NewScorer(models.ScoringConfig{AccuracyWeight: 0.6, SpeedWeight: 0.4, Epsilon: 0.001})

	summary := scorer.Score(map[string]*models.DocumentResult{
		"instant": docResult(0.5, 50, 0),
	})

	// division floored at epsilon, never by zero
	require.Len(t, summary.SpeedRanking, 1)
	assert.InDelta(t, 50000, summary.SpeedRanking[0].WordsPerSecond, 1e-6)
}

func TestScoreEmptyResults(t *testing.T) {
	scorer := NewScorer(models.ScoringConfig{})

	summary := scorer.Score(nil)

	assert.Empty(t, summary.PerformanceRanking)
	assert.Empty(t, summary.AccuracyRanking)
	assert.Empty(t, summary.SpeedRanking)
	assert.Zero(t, summary.Statistics.TotalBackendsTested)
	assert.Empty(t, summary.Statistics.BestOverall)
}
