package geocode

import (
	"context"

	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/text"
)

// GazetteerLayer answers from the curated lookup tables, consulted in the
// order the knowledge file lists them. Detail tables for literary hotspots
// come before the prefecture and foreign tables so 青山 lands in Tokyo, not on
// the prefecture named by its canonical trim.
type GazetteerLayer struct {
	tables []knowledge.GazetteerTable
}

// NewGazetteerLayer builds the layer over the tables in kb.
func NewGazetteerLayer(kb *knowledge.Knowledge) *GazetteerLayer {
	return &GazetteerLayer{tables: kb.Gazetteers}
}

// Name implements Layer.
func (l *GazetteerLayer) Name() string { return "gazetteer" }

// Resolve implements Layer. The normalized name is tried first, then its
// canonical form with the prefecture marker trimmed.
func (l *GazetteerLayer) Resolve(_ context.Context, q *Query) (*Result, error) {
	keys := []string{q.Name}
	if canon := text.Canonical(q.Name); canon != q.Name {
		keys = append(keys, canon)
	}
	for _, table := range l.tables {
		for _, key := range keys {
			entry, ok := table.Entries[key]
			if !ok {
				continue
			}
			canonical := entry.Region
			if canonical == "" {
				canonical = key
			}
			return &Result{
				CanonicalName: canonical,
				Lat:           entry.Lat,
				Lon:           entry.Lon,
				Confidence:    table.Confidence,
				Source:        table.Name,
			}, nil
		}
	}
	return nil, ErrNoMatch
}
