// Package extract produces raw place-name candidates from sentences. Each
// extraction strategy implements Extractor; the coordinator runs every
// registered strategy and arbitrates between their results.
package extract

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/harutok/chimei/internal/model"
)

// Extractor is one extraction strategy. Extract returns all candidates found
// in the sentence; failures are recovered by the caller, which treats the
// strategy's output as empty for that sentence.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, sc model.SentenceContext) ([]model.Candidate, error)
}

// contextWindow cuts up to n runes of sentence text on each side of a span.
func contextWindow(s string, span model.Span, n int) (before, after string) {
	b := s[:span.Start]
	for i := 0; i < n && len(b) > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(b)
		b = b[:len(b)-size]
	}
	a := s[span.End:]
	rest := a
	for i := 0; i < n && len(rest) > 0; i++ {
		_, size := utf8.DecodeRuneInString(rest)
		rest = rest[size:]
	}
	return s[len(b):span.Start], a[:len(a)-len(rest)]
}

// suppressContained removes candidates whose span is fully contained by a
// longer candidate with the same textual content, keeping ambiguous siblings
// whose text is not a substring of the container's.
func suppressContained(cands []model.Candidate) []model.Candidate {
	if len(cands) < 2 {
		return cands
	}
	ordered := make([]model.Candidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Confidence != ordered[j].Confidence {
			return ordered[i].Confidence > ordered[j].Confidence
		}
		return len(ordered[i].Text) > len(ordered[j].Text)
	})

	var kept []model.Candidate
	for _, c := range ordered {
		contained := false
		for _, k := range kept {
			if k.Span.Contains(c.Span) && strings.Contains(k.Text, c.Text) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Span.Start != kept[j].Span.Start {
			return kept[i].Span.Start < kept[j].Span.Start
		}
		return kept[i].Confidence > kept[j].Confidence
	})
	return kept
}
