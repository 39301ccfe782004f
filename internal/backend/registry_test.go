package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/render"
)

func TestRegistryRecordsUnavailabilityReasons(t *testing.T) {
	cfg := models.DefaultConfig()
	registry := NewRegistry(cfg, render.New(false))

	// no API keys in the default config
	unavailable := registry.Unavailable()
	assert.Contains(t, unavailable, "openai-vision")
	assert.Contains(t, unavailable, "gemini-vision")
	assert.NotEmpty(t, unavailable["openai-vision"])

	// native needs no external collaborators
	native, ok := registry.Get("native")
	require.True(t, ok)
	assert.Equal(t, "native", native.Name())
	assert.Contains(t, registry.Names(), "native")
}

func TestRegistryHonorsDisabledBackends(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Backends.Native.Disabled = true
	cfg.Backends.Tesseract.Disabled = true

	registry := NewRegistry(cfg, render.New(false))

	_, ok := registry.Get("native")
	assert.False(t, ok)
	assert.Equal(t, "disabled in config", registry.Unavailable()["native"])
	assert.Equal(t, "disabled in config", registry.Unavailable()["tesseract"])
}

func TestRegistryEveryBackendAccountedFor(t *testing.T) {
	cfg := models.DefaultConfig()
	registry := NewRegistry(cfg, render.New(false))

	accounted := len(registry.Names()) + len(registry.Unavailable())
	assert.Equal(t, 4, accounted)
}
