package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/qaanoonAI/legal-ocr-service/internal/classifier"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/render"
)

// GeminiAdapter sends rendered page images to a Gemini vision model.
// The genai client is created per Extract call because its constructor
// takes the request context.
type GeminiAdapter struct {
	apiKey   string
	model    string
	renderer *render.Renderer
}

func NewGeminiAdapter(cfg models.GeminiConfig, renderer *render.Renderer) *GeminiAdapter {
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiAdapter{
		apiKey:   cfg.APIKey,
		model:    model,
		renderer: renderer,
	}
}

func (a *GeminiAdapter) Name() string { return "gemini-vision" }

func (a *GeminiAdapter) Extract(ctx context.Context, req Request) (*models.ExtractionReport, error) {
	started := time.Now()

	pages, err := resolvePages(req.PDFPath, req.Pages)
	if err != nil {
		return nil, err
	}
	if err := a.renderer.Available(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)

	results := make([]models.ExtractionResult, 0, len(pages))
	for _, idx := range pages {
		results = append(results, a.extractPage(ctx, model, req, idx))
	}

	return buildReport(a.Name(), results, started), nil
}

func (a *GeminiAdapter) extractPage(ctx context.Context, model *genai.GenerativeModel, req Request, idx int) models.ExtractionResult {
	pageStart := time.Now()

	img, err := a.renderer.RenderPage(ctx, req.PDFPath, idx, req.DPI)
	if err != nil {
		return errorResult(a.Name(), idx, pageStart, err)
	}

	resp, err := model.GenerateContent(ctx,
		genai.Text(transcriptionPrompt),
		genai.ImageData("png", img),
	)
	if err != nil {
		return errorResult(a.Name(), idx, pageStart, fmt.Errorf("gemini vision call failed: %w", err))
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return errorResult(a.Name(), idx, pageStart, fmt.Errorf("gemini returned no text"))
	}

	text := classifier.CleanArabicText(stripFences(sb.String()))
	return pageResult(a.Name(), idx, text, classifier.QualityScore(text), pageStart)
}
