package model

import "time"

// Config holds the runtime configuration assembled by the CLI from flags,
// environment and the viper config file. Knowledge tables are configured
// separately through their own YAML file.
type Config struct {
	KnowledgePath string // empty means embedded defaults

	Coordinator CoordinatorConfig
	NER         NERConfig
	Geocode     GeocodeConfig
	Concurrency ConcurrencyConfig
	Output      OutputConfig
}

// CoordinatorConfig tunes the extraction coordinator.
type CoordinatorConfig struct {
	// ClassifyPattern forces context classification of pattern-extractor
	// candidates too. Default trusts their boundary-validated confidence.
	ClassifyPattern bool
}

// NERConfig configures the LLM-backed NER candidate source.
type NERConfig struct {
	Enabled  bool
	Provider string // "openai"
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// GeocodeConfig configures the geocoding resolver.
type GeocodeConfig struct {
	Enabled      bool
	ProviderURL  string        // external geocoding endpoint
	UserAgent    string
	Timeout      time.Duration // per external call
	MinDelay     time.Duration // fixed minimum delay between external calls
	MaxAttempts  int           // bounded retries on transient failures
	CacheEnabled bool
	CacheDir     string
}

// ConcurrencyConfig sets batch worker counts.
type ConcurrencyConfig struct {
	Workers int
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir     string
	Verbose bool
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		NER: NERConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
		},
		Geocode: GeocodeConfig{
			Enabled:      true,
			ProviderURL:  "https://nominatim.openstreetmap.org/search",
			UserAgent:    "chimei/0.2 (+https://github.com/harutok/chimei)",
			Timeout:      10 * time.Second,
			MinDelay:     time.Second,
			MaxAttempts:  3,
			CacheEnabled: true,
			CacheDir:     ".chimei-cache",
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
		Output:      OutputConfig{Dir: "./chimei-out"},
	}
}
