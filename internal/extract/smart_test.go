package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaanoonAI/legal-ocr-service/internal/aggregate"
	"github.com/qaanoonAI/legal-ocr-service/internal/backend"
	"github.com/qaanoonAI/legal-ocr-service/internal/classifier"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

// fakeSource serves canned page texts; an empty entry simulates a scanned
// page, "ERR" a page the parser cannot read.
type fakeSource struct {
	pages []string
}

func (s *fakeSource) PageCount() int { return len(s.pages) }

func (s *fakeSource) PageText(i int) (string, error) {
	if s.pages[i] == "ERR" {
		return "", fmt.Errorf("damaged page")
	}
	return s.pages[i], nil
}

// fakeOCR answers single-page requests with a fixed text.
type fakeOCR struct {
	text  string
	fail  bool
	calls []int
}

func (o *fakeOCR) Name() string { return "fake-ocr" }

func (o *fakeOCR) Extract(ctx context.Context, req backend.Request) (*models.ExtractionReport, error) {
	o.calls = append(o.calls, req.Pages...)
	if o.fail {
		return nil, fmt.Errorf("ocr engine down")
	}
	idx := req.Pages[0]
	return &models.ExtractionReport{
		Backend: o.Name(),
		PageResults: []models.ExtractionResult{
			{
				PageIndex:  idx,
				Text:       o.text,
				WordCount:  models.CountWords(o.text),
				Confidence: 0.9,
				Backend:    o.Name(),
				HasContent: o.text != "",
			},
		},
		TotalPages: 1,
	}, nil
}

func newExtractor(ocr backend.Adapter) *SmartExtractor {
	return NewSmartExtractor(
		classifier.New(models.ClassifierConfig{}),
		ocr,
		aggregate.New(models.ScoringConfig{}),
		300,
	)
}

func goodPage() string {
	return strings.Repeat("صدر نظام المحاكم التجارية بالمرسوم الملكي ", 3)
}

func TestSmartExtractUsesDirectTextWhenTrusted(t *testing.T) {
	ocr := &fakeOCR{text: "نص من التعرف الضوئي"}
	e := newExtractor(ocr)

	doc, stats, err := e.ExtractSource(context.Background(), &fakeSource{pages: []string{goodPage(), goodPage()}}, "doc.pdf", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.DirectPages)
	assert.Zero(t, stats.OCRPages)
	assert.Empty(t, ocr.calls, "OCR must not run on trusted pages")
	assert.Equal(t, 2, doc.TotalPages)
	assert.Equal(t, "smart", doc.Backend)
}

func TestSmartExtractFallsBackToOCR(t *testing.T) {
	ocr := &fakeOCR{text: "نص مستخرج بالتعرف الضوئي"}
	e := newExtractor(ocr)

	source := &fakeSource{pages: []string{goodPage(), "", "ERR"}}
	doc, stats, err := e.ExtractSource(context.Background(), source, "doc.pdf", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DirectPages)
	assert.Equal(t, 2, stats.OCRPages)
	assert.Zero(t, stats.FailedPages)
	assert.Equal(t, []int{1, 2}, ocr.calls)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, "نص مستخرج بالتعرف الضوئي", doc.Pages[1].Text)
}

func TestSmartExtractKeepsDirectTextWhenOCRFails(t *testing.T) {
	ocr := &fakeOCR{fail: true}
	e := newExtractor(ocr)

	// short direct text forces an OCR attempt, but something is better
	// than nothing when that attempt fails
	source := &fakeSource{pages: []string{"نص قصير"}}
	doc, stats, err := e.ExtractSource(context.Background(), source, "doc.pdf", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DirectPages)
	assert.Zero(t, stats.OCRPages)
	assert.Zero(t, stats.FailedPages)
	assert.Equal(t, "نص قصير", doc.Pages[0].Text)
}

func TestSmartExtractCountsFailedPages(t *testing.T) {
	e := newExtractor(&fakeOCR{fail: true})

	doc, stats, err := e.ExtractSource(context.Background(), &fakeSource{pages: []string{""}}, "doc.pdf", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FailedPages)
	require.Len(t, doc.Pages, 1)
	assert.NotEmpty(t, doc.Pages[0].Error)
	assert.False(t, doc.Pages[0].HasContent)
}

func TestSmartExtractWithoutOCRBackend(t *testing.T) {
	e := newExtractor(nil)

	source := &fakeSource{pages: []string{goodPage(), ""}}
	_, stats, err := e.ExtractSource(context.Background(), source, "doc.pdf", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DirectPages)
	assert.Equal(t, 1, stats.FailedPages)
}

func TestSmartExtractPageSelection(t *testing.T) {
	e := newExtractor(nil)
	source := &fakeSource{pages: []string{goodPage(), goodPage(), goodPage()}}

	doc, _, err := e.ExtractSource(context.Background(), source, "doc.pdf", []int{2, 0})
	require.NoError(t, err)

	// aggregation re-sorts to ascending page order
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 0, doc.Pages[0].PageIndex)
	assert.Equal(t, 2, doc.Pages[1].PageIndex)

	_, _, err = e.ExtractSource(context.Background(), source, "doc.pdf", []int{5})
	require.Error(t, err)
}
