package aggregate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

func page(idx int, text string, conf float64) models.ExtractionResult {
	return models.ExtractionResult{
		PageIndex:  idx,
		Text:       text,
		WordCount:  models.CountWords(text),
		Confidence: conf,
		Backend:    "native",
		HasContent: strings.TrimSpace(text) != "",
	}
}

func TestAggregatePreservesPageOrder(t *testing.T) {
	agg := New(models.ScoringConfig{})

	// collected out of order, as a parallel run would produce them
	pages := []models.ExtractionResult{
		page(2, "الصفحه الثالثه", 0.8),
		page(0, "الصفحه الاولى", 0.9),
		page(1, "الصفحه الثانيه", 0.7),
	}

	result := agg.Aggregate("native", pages, 1.5)

	require.Len(t, result.Pages, 3)
	for i, p := range result.Pages {
		assert.Equal(t, i, p.PageIndex)
	}
	assert.Equal(t, "الصفحه الاولى\n\nالصفحه الثانيه\n\nالصفحه الثالثه", result.FullText)
	assert.Equal(t, 1.5, result.ProcessingTime)
	assert.InDelta(t, 0.8, result.OverallConfidence, 1e-9)
}

func TestAggregateSkipsEmptyPagesInJoin(t *testing.T) {
	agg := New(models.ScoringConfig{})

	pages := []models.ExtractionResult{
		page(0, "نص الصفحه الاولى", 0.9),
		page(1, "", 0),
		page(2, "نص الصفحه الثالثه", 0.8),
	}

	result := agg.Aggregate("native", pages, 1)

	assert.Equal(t, "نص الصفحه الاولى\n\nنص الصفحه الثالثه", result.FullText)
	// the empty page is retained for auditing
	require.Len(t, result.Pages, 3)
	assert.False(t, result.Pages[1].HasContent)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 6, result.TotalWords)
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := New(models.ScoringConfig{})

	result := agg.Aggregate("native", nil, 0.1)

	assert.Empty(t, result.FullText)
	assert.Zero(t, result.TotalWords)
	assert.Zero(t, result.OverallConfidence)
	assert.Equal(t, "unknown", result.DocumentType)
	assert.Zero(t, result.TypeConfidence)
}

func TestAnalyzeDocumentType(t *testing.T) {
	agg := New(models.ScoringConfig{TypeConfidenceDivisor: 10})

	tests := []struct {
		name           string
		text           string
		wantType       string
		wantConfidence float64
	}{
		{
			name:           "regulation keywords dominate",
			text:           "نظام المحاكم نظام جديد لائحة تنفيذية قانون تنظيم القضاء",
			wantType:       "regulation",
			wantConfidence: 0.5,
		},
		{
			name:           "court ruling",
			text:           "حكم صادر من محكمة الاستئناف في قضية دعوى تجارية بموجب قرار",
			wantType:       "court_ruling",
			wantConfidence: 0.6,
		},
		{
			name:           "contract",
			text:           "عقد شراكة واتفاقية مقاولة بين الطرفين",
			wantType:       "contract",
			wantConfidence: 0.4,
		},
		{
			name:           "confidence capped at one",
			text:           strings.Repeat("نظام ", 25),
			wantType:       "regulation",
			wantConfidence: 1.0,
		},
		{
			name:           "no keywords",
			text:           "هذا كتاب عن الطبخ والمأكولات الشعبية",
			wantType:       "unknown",
			wantConfidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := agg.AnalyzeDocumentType(tt.text)
			assert.Equal(t, tt.wantType, analysis.DocumentType)
			assert.InDelta(t, tt.wantConfidence, analysis.TypeConfidence, 1e-9)
		})
	}
}

func TestAnalyzeDocumentTypeTieGoesToFirstCategory(t *testing.T) {
	agg := New(models.ScoringConfig{})

	// one regulation keyword and one contract keyword
	analysis := agg.AnalyzeDocumentType("نظام يحكم هذا عقد")
	assert.Equal(t, "regulation", analysis.DocumentType)
}

func TestAnalyzeArticlesAndDates(t *testing.T) {
	agg := New(models.ScoringConfig{})

	analysis := agg.AnalyzeDocumentType("مادة 1 ثم مادة 2 ثم مادة15 صدر في 1445هـ بتاريخ 2023/5/14")
	assert.Equal(t, 3, analysis.ArticleCount)
	assert.True(t, analysis.ContainsDates)

	noDates := agg.AnalyzeDocumentType("فقرة بدون تواريخ")
	assert.False(t, noDates.ContainsDates)
	assert.Zero(t, noDates.ArticleCount)
}
