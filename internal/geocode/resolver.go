// Package geocode turns accepted mentions into coordinates. Resolution walks
// an ordered chain of layers, cheapest and most trusted first; the external
// provider is the last resort and the only layer that leaves the process.
package geocode

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harutok/chimei/internal/cache"
	"github.com/harutok/chimei/internal/model"
	"github.com/harutok/chimei/internal/text"
)

// ErrNoMatch is returned by a layer that has no answer for the query. The
// resolver moves on to the next layer; any other error is logged and also
// moves on.
var ErrNoMatch = errors.New("geocode: no match")

// Query is one name to resolve, with the context the layers may use.
type Query struct {
	Name       string // normalized lookup form
	Raw        string // surface form as written
	Label      string
	RegionHint string
}

// Result is a layer's answer. Confidence is the layer's own trust in the
// coordinates, combined per-mention by the resolver.
type Result struct {
	CanonicalName string  `json:"canonical_name"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Confidence    float64 `json:"confidence"`
	Source        string  `json:"source"`
}

// Layer answers queries from one source of coordinates.
type Layer interface {
	Name() string
	Resolve(ctx context.Context, q *Query) (*Result, error)
}

// Resolver runs the layer chain with a corpus-wide result cache in front.
type Resolver struct {
	layers []Layer
	cache  cache.Cache
	log    *zap.Logger
}

// NewResolver builds a resolver. store may be nil to disable caching.
func NewResolver(log *zap.Logger, store cache.Cache, layers ...Layer) *Resolver {
	return &Resolver{layers: layers, cache: store, log: log}
}

// Resolve geocodes one mention. It never returns an error: a mention no layer
// can place comes back as a failed record so the caller keeps its mention
// count intact.
func (r *Resolver) Resolve(ctx context.Context, docID string, m model.AcceptedMention) model.GeocodedRecord {
	rec := model.GeocodedRecord{
		ID:               uuid.NewString(),
		DocumentID:       docID,
		PlaceName:        m.PlaceName,
		Span:             m.Span,
		Confidence:       m.Confidence,
		ResolutionSource: model.ResolutionFailed,
		RegionHint:       m.RegionHint,
		Sentence:         m.Sentence,
	}
	if !model.IsPlaceLabel(m.Label) {
		return rec
	}

	q := &Query{
		Name:       text.Normalize(m.PlaceName),
		Raw:        m.PlaceName,
		Label:      m.Label,
		RegionHint: m.RegionHint,
	}

	if res, ok := r.cached(q); ok {
		r.apply(&rec, m, res)
		return rec
	}

	for _, layer := range r.layers {
		res, err := layer.Resolve(ctx, q)
		if err != nil {
			if !errors.Is(err, ErrNoMatch) {
				r.log.Warn("geocode layer failed",
					zap.String("layer", layer.Name()),
					zap.String("place", m.PlaceName),
					zap.Error(err))
			}
			continue
		}
		r.store(q, res)
		r.apply(&rec, m, res)
		return rec
	}
	return rec
}

// apply fills the record from a layer result. The record confidence combines
// the mention's own confidence with the layer's trust in the coordinates.
func (r *Resolver) apply(rec *model.GeocodedRecord, m model.AcceptedMention, res *Result) {
	lat, lon := res.Lat, res.Lon
	rec.CanonicalName = res.CanonicalName
	rec.Latitude = &lat
	rec.Longitude = &lon
	rec.ResolutionSource = res.Source
	rec.Confidence = clamp01(m.Confidence * res.Confidence)
}

// cacheKey includes the label: the classical reading of a name resolves to a
// different place than its modern reading.
func (r *Resolver) cacheKey(q *Query) string {
	return cache.Key(q.Label + ":" + q.Name)
}

func (r *Resolver) cached(q *Query) (*Result, bool) {
	if r.cache == nil {
		return nil, false
	}
	data, ok := r.cache.Get(r.cacheKey(q))
	if !ok {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.cache.Delete(r.cacheKey(q))
		return nil, false
	}
	return &res, true
}

func (r *Resolver) store(q *Query, res *Result) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.cache.Set(r.cacheKey(q), data); err != nil {
		r.log.Warn("geocode cache write failed", zap.Error(err))
	}
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
