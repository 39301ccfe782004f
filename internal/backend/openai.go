package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/qaanoonAI/legal-ocr-service/internal/classifier"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/render"
)

const transcriptionPrompt = `You are an OCR engine for Arabic legal documents. ` +
	`Transcribe ALL text visible in this page image exactly as written, ` +
	`preserving the original Arabic. Output only the transcribed text with ` +
	`no commentary, no translation and no markdown formatting.`

// OpenAIAdapter sends rendered page images to an OpenAI vision model and
// treats the transcription as OCR output.
type OpenAIAdapter struct {
	client   *openai.Client
	model    string
	renderer *render.Renderer
}

func NewOpenAIAdapter(cfg models.OpenAIConfig, renderer *render.Renderer) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIAdapter{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		renderer: renderer,
	}
}

func (a *OpenAIAdapter) Name() string { return "openai-vision" }

func (a *OpenAIAdapter) Extract(ctx context.Context, req Request) (*models.ExtractionReport, error) {
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

func (a *OpenAIAdapter) extractPage(ctx context.Context, req Request, idx int) models.ExtractionResult {
	pageStart := time.Now()

	img, err := a.renderer.RenderPage(ctx, req.PDFPath, idx, req.DPI)
	if err != nil {
		return errorResult(a.Name(), idx, pageStart, err)
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: transcriptionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		MaxTokens: 4096,
	})
	if err != nil {
		return errorResult(a.Name(), idx, pageStart, fmt.Errorf("openai vision call failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return errorResult(a.Name(), idx, pageStart, fmt.Errorf("openai returned no choices"))
	}

	text := classifier.CleanArabicText(stripFences(resp.Choices[0].Message.Content))
	return pageResult(a.Name(), idx, text, classifier.QualityScore(text), pageStart)
}

// stripFences removes markdown code fences that vision models sometimes
// wrap around their output.
func stripFences(response string) string {
	cleaned := strings.TrimSpace(response)
	fence := "```"
	cleaned = strings.TrimPrefix(cleaned, fence+"text")
	cleaned = strings.ReplaceAll(cleaned, fence, "")
	return strings.TrimSpace(cleaned)
}
