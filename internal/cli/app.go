package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/harutok/chimei/internal/cache"
	"github.com/harutok/chimei/internal/extract"
	"github.com/harutok/chimei/internal/geocode"
	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/llm"
	"github.com/harutok/chimei/internal/model"
	"github.com/harutok/chimei/internal/pipeline"
)

// app bundles the assembled components a command runs with.
type app struct {
	cfg      *model.Config
	kb       *knowledge.Knowledge
	log      *zap.Logger
	pipeline *pipeline.Pipeline
	resolver *geocode.Resolver
}

// newApp loads the knowledge tables and wires the pipeline from cfg. A
// missing or malformed knowledge file is fatal here, before any document is
// touched.
func newApp(cfg *model.Config, log *zap.Logger, sink pipeline.ResultSink) (*app, error) {
	kb, err := knowledge.Load(cfg.KnowledgePath)
	if err != nil {
		return nil, err
	}

	patternEx, err := extract.NewPatternExtractor(kb)
	if err != nil {
		return nil, err
	}
	extractors := []extract.Extractor{patternEx}

	if cfg.NER.Enabled {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.NER))
		if err != nil {
			return nil, err
		}
		if provider != nil {
			nerEx, err := extract.NewNERExtractor(provider, kb)
			if err != nil {
				return nil, err
			}
			extractors = append(extractors, nerEx)
		}
	}

	var resolver *geocode.Resolver
	if cfg.Geocode.Enabled {
		resolver = newResolver(cfg, kb, log)
	}

	p := pipeline.New(pipeline.Options{
		Knowledge:       kb,
		Extractors:      extractors,
		Resolver:        resolverOrNil(resolver),
		Sink:            sink,
		ClassifyPattern: cfg.Coordinator.ClassifyPattern,
		Logger:          log,
	})

	return &app{cfg: cfg, kb: kb, log: log, pipeline: p, resolver: resolver}, nil
}

func newResolver(cfg *model.Config, kb *knowledge.Knowledge, log *zap.Logger) *geocode.Resolver {
	layers := []geocode.Layer{
		geocode.NewGazetteerLayer(kb),
		geocode.NewClassicalLayer(kb),
	}
	if cfg.Geocode.ProviderURL != "" {
		nominatim := geocode.NewNominatim(cfg.Geocode.ProviderURL, cfg.Geocode.UserAgent, cfg.Geocode.Timeout)
		layers = append(layers, geocode.NewExternalLayer(
			nominatim,
			cfg.Geocode.MinDelay,
			cfg.Geocode.MaxAttempts,
			kb.Resolution.ExternalConfidence,
		))
	}

	var store cache.Cache
	if cfg.Geocode.CacheEnabled {
		store = cache.NewLayeredCache(0, cfg.Geocode.CacheDir, 0)
	}
	return geocode.NewResolver(log, store, layers...)
}

// resolverOrNil avoids handing the pipeline a typed nil behind its interface.
func resolverOrNil(r *geocode.Resolver) pipeline.Resolver {
	if r == nil {
		return nil
	}
	return r
}

// apiKeyFromEnv falls back to the conventional variable when the config
// carries no key.
func apiKeyFromEnv(cfg *model.Config) {
	if cfg.NER.APIKey == "" {
		cfg.NER.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func requireNERKey(cfg *model.Config) error {
	if cfg.NER.Enabled && cfg.NER.Provider == "openai" && cfg.NER.APIKey == "" {
		return fmt.Errorf("NER requires an API key: set OPENAI_API_KEY or ner.api_key")
	}
	return nil
}
