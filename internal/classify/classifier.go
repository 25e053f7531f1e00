// Package classify decides whether an extracted candidate really names a
// place. Classification is context-driven: the same surface form (萩, 柏, 東)
// flips between place and non-place depending on the words around it.
package classify

import (
	"fmt"
	"strings"

	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
	"github.com/harutok/chimei/internal/text"
)

// Result is one classification verdict.
type Result struct {
	IsPlace    bool
	Label      string
	Confidence float64
	Reasoning  string
	RegionHint string // present-day region for classical province names
}

// ContextClassifier applies the knowledge-base rules and indicator catalogues.
// It is stateless and safe for concurrent use.
type ContextClassifier struct {
	kb *knowledge.Knowledge
}

// New builds a classifier over kb.
func New(kb *knowledge.Knowledge) *ContextClassifier {
	return &ContextClassifier{kb: kb}
}

// Classify labels one candidate. Stage A runs the deterministic non-place
// rules; a candidate they pass is then checked against the classical province
// table and finally scored by the indicator catalogues.
func (c *ContextClassifier) Classify(cand model.Candidate) (Result, error) {
	ctx := cand.Sentence
	if ctx == "" {
		ctx = cand.Before + cand.Text + cand.After
	}

	cl := &c.kb.Classifier
	for i := range cl.NonPlaceRules {
		rule := &cl.NonPlaceRules[i]
		if rule.Covers(ctx, cand.Text) {
			return Result{
				IsPlace:    false,
				Label:      rule.Category,
				Confidence: rule.Confidence,
				Reasoning:  fmt.Sprintf("non-place context: %s reading", rule.Category),
			}, nil
		}
	}

	lookup := text.Normalize(cand.Text)
	placeScore := cl.CountPlace(ctx)
	personScore := cl.CountPerson(ctx)
	historicalScore := cl.CountHistorical(ctx)

	if entry, ok := c.kb.Classical[lookup]; ok {
		if containsAny(ctx, entry.Keywords) || historicalScore > 0 {
			net := float64(placeScore+historicalScore+1) + cl.Bias - float64(personScore)
			return Result{
				IsPlace:    true,
				Label:      model.LabelHistoricalProvince,
				Confidence: c.scale(net),
				Reasoning:  fmt.Sprintf("classical province, today %s", entry.ModernRegion),
				RegionHint: entry.ModernRegion,
			}, nil
		}
	}

	// A name that doubles as a personal name flips to the person reading as
	// soon as the context shows any person evidence.
	if entry, ok := c.kb.Ambiguous[lookup]; ok {
		if personScore > 0 && entry.PersonLikelihood > 0.3 {
			return Result{
				IsPlace:    false,
				Label:      model.LabelPerson,
				Confidence: c.scale(float64(personScore) + entry.PersonLikelihood),
				Reasoning:  fmt.Sprintf("ambiguous name, person evidence %d", personScore),
			}, nil
		}
	}

	// Rejecting a name needs both a person score advantage and person
	// evidence at or above the floor; one stray indicator hit in ordinary
	// narrative does not flip an unambiguous name.
	net := float64(placeScore+historicalScore) + cl.Bias - float64(personScore)
	if net > 0 || personScore < cl.PersonFloor {
		res := Result{
			IsPlace:    true,
			Label:      model.LabelPlace,
			Confidence: c.scale(net),
			Reasoning:  fmt.Sprintf("place %d vs person %d", placeScore, personScore),
		}
		// Disambiguate downstream geocoding for names shared with many towns.
		if entry, ok := c.kb.Ambiguous[lookup]; ok {
			res.RegionHint = entry.ModernPlace
		}
		return res, nil
	}
	return Result{
		IsPlace:    false,
		Label:      model.LabelPerson,
		Confidence: c.scale(-net),
		Reasoning:  fmt.Sprintf("person %d vs place %d", personScore, placeScore),
	}, nil
}

// Denied reports whether name sits on the deny list consulted by the degraded
// fallback path.
func (c *ContextClassifier) Denied(name string) bool {
	lookup := text.Normalize(name)
	for _, d := range c.kb.Classifier.DenyList {
		if lookup == d {
			return true
		}
	}
	return false
}

// scale maps an indicator score onto a confidence in [base, max].
func (c *ContextClassifier) scale(score float64) float64 {
	cl := &c.kb.Classifier
	conf := cl.BaseConfidence + cl.IndicatorStep*score
	if conf > cl.MaxConfidence {
		return cl.MaxConfidence
	}
	if conf < cl.BaseConfidence {
		return cl.BaseConfidence
	}
	return conf
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
