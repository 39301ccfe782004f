package backend

import (
	"os/exec"

	"github.com/rs/zerolog/log"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/render"
)

// Registry holds the adapters that initialized successfully, in
// registration order, plus the reason for every backend that did not.
type Registry struct {
	adapters    map[string]Adapter
	order       []string
	unavailable map[string]string
}

// NewRegistry builds the registry from config. Backends that cannot run
// are recorded with a reason instead of being silently skipped.
func NewRegistry(cfg *models.Config, renderer *render.Renderer) *Registry {
	r := &Registry{
		adapters:    make(map[string]Adapter),
		unavailable: make(map[string]string),
	}

	if cfg.Backends.Native.Disabled {
		r.markUnavailable("native", "disabled in config")
	} else {
		r.register(NewNativeAdapter())
	}

	switch {
	case cfg.Backends.Tesseract.Disabled:
		r.markUnavailable("tesseract", "disabled in config")
	case lookPathErr("tesseract") != nil:
		r.markUnavailable("tesseract", "tesseract binary not found in PATH")
	case renderer.Available() != nil:
		r.markUnavailable("tesseract", renderer.Available().Error())
	default:
		r.register(NewTesseractAdapter(renderer, cfg.Backends.Tesseract.Languages))
	}

	if cfg.Backends.OpenAI.APIKey == "" {
		r.markUnavailable("openai-vision", "api key not configured")
	} else if err := renderer.Available(); err != nil {
		r.markUnavailable("openai-vision", err.Error())
	} else {
		r.register(NewOpenAIAdapter(cfg.Backends.OpenAI, renderer))
	}

	if cfg.Backends.Gemini.APIKey == "" {
		r.markUnavailable("gemini-vision", "api key not configured")
	} else if err := renderer.Available(); err != nil {
		r.markUnavailable("gemini-vision", err.Error())
	} else {
		r.register(NewGeminiAdapter(cfg.Backends.Gemini, renderer))
	}

	return r
}

func (r *Registry) register(a Adapter) {
	r.adapters[a.Name()] = a
	r.order = append(r.order, a.Name())
	log.Info().Str("backend", a.Name()).Msg("backend registered")
}

func (r *Registry) markUnavailable(name, reason string) {
	r.unavailable[name] = reason
	log.Warn().Str("backend", name).Str("reason", reason).Msg("backend unavailable")
}

// Get returns the adapter by name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names lists available backends in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Unavailable maps each failed backend to its reason.
func (r *Registry) Unavailable() map[string]string {
	out := make(map[string]string, len(r.unavailable))
	for k, v := range r.unavailable {
		out[k] = v
	}
	return out
}

func lookPathErr(binary string) error {
	_, err := exec.LookPath(binary)
	return err
}
