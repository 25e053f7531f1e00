package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/harutok/chimei/internal/model"
)

// NewProvider creates a provider based on configuration. An empty provider
// name means detection is disabled and both return values are nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts model.NERConfig to llm.Config.
func ConfigFromModel(c model.NERConfig) Config {
	return Config{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
		Timeout:  int(c.Timeout / time.Second),
	}
}
