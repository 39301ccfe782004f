package backend

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/qaanoonAI/legal-ocr-service/internal/classifier"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/render"
)

// TesseractAdapter rasterizes each page with poppler and runs it through
// Tesseract. A fresh gosseract client per page keeps the adapter safe for
// concurrent use.
type TesseractAdapter struct {
	renderer  *render.Renderer
	languages []string
}

func NewTesseractAdapter(renderer *render.Renderer, languages []string) *TesseractAdapter {
	if len(languages) == 0 {
		languages = []string{"ara", "eng"}
	}
	return &TesseractAdapter{
		renderer:  renderer,
		languages: languages,
	}
}

func (a *TesseractAdapter) Name() string { return "tesseract" }

func (a *TesseractAdapter) Extract(ctx context.Context, req Request) (*models.ExtractionReport, error) {
	started := time.Now()

	pages, err := resolvePages(req.PDFPath, req.Pages)
	if err != nil {
		return nil, err
	}
	if err := a.renderer.Available(); err != nil {
		return nil, err
	}

	results := make([]models.ExtractionResult, 0, len(pages))
	for _, idx := range pages {
		results = append(results, a.extractPage(ctx, req, idx))
	}

	return buildReport(a.Name(), results, started), nil
}

func (a *TesseractAdapter) extractPage(ctx context.Context, req Request, idx int) models.ExtractionResult {
	pageStart := time.Now()

	img, err := a.renderer.RenderPage(ctx, req.PDFPath, idx, req.DPI)
	if err != nil {
		return errorResult(a.Name(), idx, pageStart, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(a.languages...); err != nil {
		return errorResult(a.Name(), idx, pageStart, fmt.Errorf("setting languages: %w", err))
	}
	if req.DPI > 0 {
		client.SetVariable("user_defined_dpi", strconv.Itoa(req.DPI))
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return errorResult(a.Name(), idx, pageStart, fmt.Errorf("loading page image: %w", err))
	}

	text, err := client.Text()
	if err != nil {
		return errorResult(a.Name(), idx, pageStart, fmt.Errorf("tesseract failed: %w", err))
	}

	cleaned := classifier.CleanArabicText(text)
	result := pageResult(a.Name(), idx, cleaned, wordConfidence(client), pageStart)
	if result.Confidence == 0 && result.HasContent {
		result.Confidence = classifier.QualityScore(cleaned)
	}
	return result
}

// wordConfidence averages Tesseract's per-word confidences into a 0..1
// score. Zero means no words were recognized.
func wordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
