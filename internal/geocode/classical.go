package geocode

import (
	"context"

	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
)

// ClassicalLayer places classical province names at the seat of their
// present-day region. It only answers mentions the classifier labeled as
// classical; the modern reading of the same characters belongs to the
// gazetteer or the external provider.
type ClassicalLayer struct {
	table      map[string]knowledge.ClassicalEntry
	confidence float64
}

// NewClassicalLayer builds the layer over the classical table in kb.
func NewClassicalLayer(kb *knowledge.Knowledge) *ClassicalLayer {
	return &ClassicalLayer{
		table:      kb.Classical,
		confidence: kb.Resolution.ClassicalConfidence,
	}
}

// Name implements Layer.
func (l *ClassicalLayer) Name() string { return "classical" }

// Resolve implements Layer.
func (l *ClassicalLayer) Resolve(_ context.Context, q *Query) (*Result, error) {
	if q.Label != model.LabelHistoricalProvince {
		return nil, ErrNoMatch
	}
	entry, ok := l.table[q.Name]
	if !ok {
		return nil, ErrNoMatch
	}
	return &Result{
		CanonicalName: entry.ModernRegion,
		Lat:           entry.Lat,
		Lon:           entry.Lon,
		Confidence:    l.confidence,
		Source:        "classical",
	}, nil
}
