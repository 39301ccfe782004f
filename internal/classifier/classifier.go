package classifier

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

// recognizable covers the charset expected on a readable Arabic legal page:
// the main Arabic block, the Arabic Supplement block, ASCII letters and
// digits, whitespace and common punctuation. Anything outside it counts
// against the page.
var recognizable = regexp.MustCompile(`[\x{0600}-\x{06FF}\x{0750}-\x{077F}a-zA-Z0-9\s.,:;!?()\-+=]`)

// DefaultArtifactGlyphs are the substitution glyphs that broken PDF text
// layers typically produce.
var DefaultArtifactGlyphs = []string{"�", "□", "▪", "◦", "●"}

// Classifier decides per page whether the embedded text layer can be
// trusted or the page must be rasterized and OCR'd.
type Classifier struct {
	charThreshold        int
	ratioThreshold       float64
	artifactGlyphs       []string
	artifactDensityLimit float64
}

// New builds a classifier from config; zero values fall back to the
// built-in thresholds.
func New(cfg models.ClassifierConfig) *Classifier {
	c := &Classifier{
		charThreshold:        cfg.CharThreshold,
		ratioThreshold:       cfg.RatioThreshold,
		artifactDensityLimit: cfg.ArtifactDensityLimit,
		artifactGlyphs:       DefaultArtifactGlyphs,
	}
	if c.charThreshold <= 0 {
		c.charThreshold = 50
	}
	if c.ratioThreshold <= 0 {
		c.ratioThreshold = 0.3
	}
	if c.artifactDensityLimit <= 0 {
		c.artifactDensityLimit = 0.05
	}
	return c
}

// NeedsOCR reports whether a page's embedded text is unusable. The checks
// short-circuit: too little text, too low a recognizable-character ratio,
// or too many artifact glyphs each force OCR on their own. Any internal
// failure also answers true, because skipping a needed OCR pass loses text
// while a redundant one only costs time.
func (c *Classifier) NeedsOCR(rawText string) (needs bool) {
	defer func() {
		if recover() != nil {
			needs = true
		}
	}()

	text := strings.TrimSpace(rawText)
	total := utf8.RuneCountInString(text)
	if total < c.charThreshold {
		return true
	}

	valid := len(recognizable.FindAllString(text, -1))
	if float64(valid)/float64(total) < c.ratioThreshold {
		return true
	}

	artifacts := 0
	for _, glyph := range c.artifactGlyphs {
		artifacts += strings.Count(text, glyph)
	}
	if float64(artifacts)/float64(total) > c.artifactDensityLimit {
		return true
	}

	return false
}
