package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/sped-tables/internal/http"
	"github.com/handiism/sped-tables/internal/model"
	"github.com/handiism/sped-tables/internal/sped"
)

// Settings holds all configuration options.
type Settings struct {
	// Service settings
	ServiceURL          string   `json:"service_url"`
	RequestTemplatePath string   `json:"request_template_path"` // empty uses the built-in template
	Variants            []string `json:"variants"`

	// Output settings
	OutputURL string `json:"output_url"` // directory path or blob bucket URL

	// Download settings
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	RequestTimeout         float64 `json:"request_timeout"` // seconds
	RequestsPerSecond      float64 `json:"requests_per_second"`
	AbortOnError           bool    `json:"abort_on_error"`

	UserAgent string `json:"user_agent"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	variants := make([]string, 0, len(model.DefaultVariants()))
	for _, v := range model.DefaultVariants() {
		variants = append(variants, v.String())
	}

	return &Settings{
		ServiceURL: sped.DefaultServiceURL,
		Variants:   variants,

		OutputURL: ".",

		MaxConcurrentDownloads: 10,
		RequestTimeout:         60,
		RequestsPerSecond:      0,
		AbortOnError:           false,

		UserAgent: "sped-tables",
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// VariantList converts the configured variant names.
func (s *Settings) VariantList() []model.Variant {
	variants := make([]model.Variant, 0, len(s.Variants))
	for _, v := range s.Variants {
		if v != "" {
			variants = append(variants, model.Variant(v))
		}
	}
	return variants
}

// Parallelism returns the worker pool size, at least 1.
func (s *Settings) Parallelism() int {
	if s.MaxConcurrentDownloads < 1 {
		return 1
	}
	return s.MaxConcurrentDownloads
}

// ToHTTPOptions converts settings to http.Options.
func (s *Settings) ToHTTPOptions() http.Options {
	return http.Options{
		Timeout:           time.Duration(s.RequestTimeout * float64(time.Second)),
		UserAgent:         s.UserAgent,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}
