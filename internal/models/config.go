package models

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// Page classification thresholds
	Classifier ClassifierConfig `yaml:"classifier"`

	// Scoring policy for backend comparisons
	Scoring ScoringConfig `yaml:"scoring"`

	// OCR backends
	Backends BackendsConfig `yaml:"backends"`

	// Comparison defaults
	Comparison ComparisonConfig `yaml:"comparison"`

	// Auth
	Auth AuthConfig `yaml:"auth"`
}

// ClassifierConfig holds the needs-OCR decision thresholds
type ClassifierConfig struct {
	CharThreshold        int     `yaml:"char_threshold"`         // minimum embedded chars before trusting a page
	RatioThreshold       float64 `yaml:"ratio_threshold"`        // minimum fraction of recognizable chars
	ArtifactDensityLimit float64 `yaml:"artifact_density_limit"` // max fraction of extraction artifact glyphs
}

// ScoringConfig holds the ranking policy constants
type ScoringConfig struct {
	AccuracyWeight        float64 `yaml:"accuracy_weight"`         // default 0.6
	SpeedWeight           float64 `yaml:"speed_weight"`            // default 0.4
	Epsilon               float64 `yaml:"epsilon"`                 // division floor for timings
	TypeConfidenceDivisor float64 `yaml:"type_confidence_divisor"` // keyword count normalizer
}

// BackendsConfig configures the OCR backends
type BackendsConfig struct {
	Native    NativeConfig    `yaml:"native"`
	Tesseract TesseractConfig `yaml:"tesseract"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Gemini    GeminiConfig    `yaml:"gemini"`
}

// NativeConfig for direct embedded-text extraction
type NativeConfig struct {
	Disabled bool `yaml:"disabled"`
}

// TesseractConfig for the Tesseract backend
type TesseractConfig struct {
	Disabled  bool     `yaml:"disabled"`
	Languages []string `yaml:"languages"` // default: ara, eng
	DPI       int      `yaml:"dpi"`       // rasterization resolution
	Enhance   bool     `yaml:"enhance"`   // ImageMagick pre-processing
}

// OpenAIConfig for OpenAI vision
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o"
}

// GeminiConfig for Google Gemini vision
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// ComparisonConfig holds orchestrator defaults
type ComparisonConfig struct {
	Parallel bool `yaml:"parallel"`
	DPI      int  `yaml:"dpi"`
}

// AuthConfig declares the service accounts allowed to call the API
type AuthConfig struct {
	JWTSecret string           `yaml:"jwt_secret"`
	Accounts  []ServiceAccount `yaml:"accounts"`
}

// ServiceAccount is a config-declared API user with a bcrypt password hash
type ServiceAccount struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Port: 8080,
		Host: "0.0.0.0",
		Classifier: ClassifierConfig{
			CharThreshold:        50,
			RatioThreshold:       0.3,
			ArtifactDensityLimit: 0.05,
		},
		Scoring: ScoringConfig{
			AccuracyWeight:        0.6,
			SpeedWeight:           0.4,
			Epsilon:               0.001,
			TypeConfidenceDivisor: 10,
		},
		Backends: BackendsConfig{
			Tesseract: TesseractConfig{
				Languages: []string{"ara", "eng"},
				DPI:       300,
			},
			OpenAI: OpenAIConfig{Model: "gpt-4o"},
			Gemini: GeminiConfig{Model: "gemini-1.5-flash"},
		},
		Comparison: ComparisonConfig{
			Parallel: true,
			DPI:      300,
		},
	}
}

// LoadConfig reads the YAML config file and applies environment overrides.
// A missing file is not an error; defaults plus env apply.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// Environment overrides
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.Backends.OpenAI.APIKey = key
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		config.Backends.OpenAI.BaseURL = url
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Backends.Gemini.APIKey = key
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}

	return config, nil
}
