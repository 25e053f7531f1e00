package extract

import (
	"context"
	"fmt"

	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
)

// SourceNER is the strategy name of the model-backed entity extractor.
const SourceNER = "ner"

// PlaceFinder names place entities in a sentence. Implementations live in
// internal/llm; the extractor treats them as a black box and re-anchors every
// returned name against the sentence text itself.
type PlaceFinder interface {
	FindPlaces(ctx context.Context, sentence string) ([]string, error)
}

// NERExtractor wraps a PlaceFinder as an extraction strategy. Its candidates
// carry the lower base reliability of the ner profile; arbitration and
// classification downstream decide whether they survive.
type NERExtractor struct {
	finder  PlaceFinder
	profile knowledge.SourceProfile
}

// NewNERExtractor builds the strategy from the ner source profile in kb.
func NewNERExtractor(finder PlaceFinder, kb *knowledge.Knowledge) (*NERExtractor, error) {
	profile, ok := kb.Profiles[SourceNER]
	if !ok {
		return nil, fmt.Errorf("knowledge: no profile for source %q", SourceNER)
	}
	return &NERExtractor{finder: finder, profile: profile}, nil
}

// Name implements Extractor.
func (e *NERExtractor) Name() string { return SourceNER }

// Extract implements Extractor. Names the model reports that do not occur
// verbatim in the sentence are dropped; a candidate without a valid span
// cannot be reconciled or geocoded.
func (e *NERExtractor) Extract(ctx context.Context, sc model.SentenceContext) ([]model.Candidate, error) {
	s := sc.SentenceText
	if s == "" {
		return nil, nil
	}
	names, err := e.finder.FindPlaces(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("ner extract: %w", err)
	}

	var cands []model.Candidate
	seen := make(map[model.Span]bool)
	for _, name := range names {
		if name == "" {
			continue
		}
		for _, start := range occurrences(s, name) {
			span := model.Span{Start: start, End: start + len(name)}
			if seen[span] {
				continue
			}
			seen[span] = true
			before, after := contextWindow(s, span, 20)
			cands = append(cands, model.Candidate{
				Text:       name,
				Span:       span,
				Source:     SourceNER,
				Confidence: e.profile.BaseReliability,
				Category:   "ner",
				Sentence:   s,
				Before:     before,
				After:      after,
			})
		}
	}
	return suppressContained(cands), nil
}
