// Package llm hosts the model-backed entity detectors behind the ner
// extraction source.
package llm

import (
	"context"
)

// Provider defines the interface for model-backed place detection.
type Provider interface {
	// Name returns the provider name
	Name() string

	// FindPlaces returns the place names the model recognizes in sentence,
	// verbatim as they occur in the text.
	FindPlaces(ctx context.Context, sentence string) ([]string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the hosted API
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int
}

// DefaultConfig returns sensible defaults. Detection is disabled until a
// provider is named.
func DefaultConfig() Config {
	return Config{
		Provider: "",
		Model:    "",
		Timeout:  30,
	}
}
