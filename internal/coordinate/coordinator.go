// Package coordinate reconciles candidates from multiple extraction sources
// into one set of accepted mentions per sentence. Sources disagree by design;
// arbitration is driven by the static per-source profiles in the knowledge
// base, never by which source happened to run first.
package coordinate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/harutok/chimei/internal/classify"
	"github.com/harutok/chimei/internal/extract"
	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
	"github.com/harutok/chimei/internal/text"
)

// Adjustment factors applied after classification.
const (
	placeBoost     = 1.2
	degradedFactor = 0.9
)

// Classifier is the verdict source consumed by the coordinator.
type Classifier interface {
	Classify(model.Candidate) (classify.Result, error)
	Denied(name string) bool
}

// Stats counts what one coordinator run saw and decided.
type Stats struct {
	Candidates int
	Rejected   int
	Accepted   int
}

// Coordinator runs the registered extractors and arbitrates their output.
// One Coordinator serves one document: classification verdicts are memoized
// per name and sentence for the lifetime of the value.
type Coordinator struct {
	extractors      []extract.Extractor
	classifier      Classifier
	profiles        map[string]knowledge.SourceProfile
	classifyPattern bool
	log             *zap.Logger

	memo map[string]classify.Result
}

// New builds a coordinator. classifyPattern forces context classification of
// the boundary-validated pattern source too; by default its verdict-free
// confidence is trusted as-is.
func New(kb *knowledge.Knowledge, cl Classifier, classifyPattern bool, log *zap.Logger, extractors ...extract.Extractor) *Coordinator {
	return &Coordinator{
		extractors:      extractors,
		classifier:      cl,
		profiles:        kb.Profiles,
		classifyPattern: classifyPattern,
		log:             log,
		memo:            make(map[string]classify.Result),
	}
}

// Run processes every sentence of a document in order and returns the
// accepted mentions. Output order is deterministic for identical input.
func (c *Coordinator) Run(ctx context.Context, sentences []model.SentenceContext) ([]model.AcceptedMention, Stats, error) {
	var (
		mentions []model.AcceptedMention
		stats    Stats
	)
	for _, sc := range sentences {
		if err := ctx.Err(); err != nil {
			return mentions, stats, err
		}
		ms := c.processSentence(ctx, sc, &stats)
		mentions = append(mentions, ms...)
	}
	stats.Accepted = len(mentions)
	return mentions, stats, nil
}

func (c *Coordinator) processSentence(ctx context.Context, sc model.SentenceContext, stats *Stats) []model.AcceptedMention {
	var cands []model.Candidate
	for _, ex := range c.extractors {
		found, err := ex.Extract(ctx, sc)
		if err != nil {
			// One failing source must not sink the sentence.
			c.log.Warn("extractor failed",
				zap.String("source", ex.Name()),
				zap.String("document", sc.DocumentID),
				zap.Error(err))
			continue
		}
		cands = append(cands, found...)
	}
	stats.Candidates += len(cands)
	if len(cands) == 0 {
		return nil
	}

	var accepted []model.AcceptedMention
	for _, group := range c.groupByName(cands) {
		rep, others := c.representative(group)
		m, ok := c.decide(rep, others)
		if !ok {
			stats.Rejected++
			continue
		}
		profile := c.profiles[m.Source]
		if m.Confidence < profile.TrustThreshold {
			stats.Rejected++
			continue
		}
		accepted = append(accepted, m)
	}

	accepted = suppressContainedMentions(accepted)
	sort.SliceStable(accepted, func(i, j int) bool {
		if accepted[i].Span.Start != accepted[j].Span.Start {
			return accepted[i].Span.Start < accepted[j].Span.Start
		}
		return accepted[i].PlaceName < accepted[j].PlaceName
	})
	return accepted
}

// groupByName buckets candidates sharing a normalized surface form. Iteration
// over the result is made deterministic by sorting the keys.
func (c *Coordinator) groupByName(cands []model.Candidate) [][]model.Candidate {
	byName := make(map[string][]model.Candidate)
	for _, cand := range cands {
		key := text.Normalize(cand.Text)
		byName[key] = append(byName[key], cand)
	}
	keys := make([]string, 0, len(byName))
	for k := range byName {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	groups := make([][]model.Candidate, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, byName[k])
	}
	return groups
}

// representative picks the candidate the group is judged by: best priority,
// then confidence, then longer text. The remaining source names are returned
// for the mention's reasoning trail.
func (c *Coordinator) representative(group []model.Candidate) (model.Candidate, []string) {
	sort.SliceStable(group, func(i, j int) bool {
		pi, pj := c.profiles[group[i].Source].Priority, c.profiles[group[j].Source].Priority
		if pi != pj {
			return pi < pj
		}
		if group[i].Confidence != group[j].Confidence {
			return group[i].Confidence > group[j].Confidence
		}
		return len(group[i].Text) > len(group[j].Text)
	})
	rep := group[0]
	var others []string
	seen := map[string]bool{rep.Source: true}
	for _, cand := range group[1:] {
		if !seen[cand.Source] {
			seen[cand.Source] = true
			others = append(others, cand.Source)
		}
	}
	return rep, others
}

// decide classifies the representative when its source is not fully trusted
// and converts the outcome into a mention.
func (c *Coordinator) decide(rep model.Candidate, others []string) (model.AcceptedMention, bool) {
	m := model.AcceptedMention{
		PlaceName:  rep.Text,
		Span:       rep.Span,
		Confidence: rep.Confidence,
		Source:     rep.Source,
		Label:      model.LabelPlace,
		Sentence:   rep.Sentence,
		Before:     rep.Before,
		After:      rep.After,
	}
	if len(others) > 0 {
		m.Reasoning = fmt.Sprintf("also reported by %s", strings.Join(others, ", "))
	}

	trusted := rep.Source == extract.SourcePattern && !c.classifyPattern
	if trusted {
		return m, true
	}

	res, err := c.classifyMemo(rep)
	if err != nil {
		// Degraded path: without a verdict, single characters and deny-listed
		// names are too risky to keep.
		if utf8.RuneCountInString(rep.Text) <= 1 || c.classifier.Denied(rep.Text) {
			return m, false
		}
		m.Confidence = clamp01(m.Confidence * degradedFactor)
		m.Reasoning = joinReason(m.Reasoning, "kept without classification")
		return m, true
	}

	if !res.IsPlace {
		return m, false
	}
	m.Label = res.Label
	m.Confidence = clamp01(m.Confidence * placeBoost)
	m.RegionHint = res.RegionHint
	m.Reasoning = joinReason(m.Reasoning, res.Reasoning)
	return m, true
}

func (c *Coordinator) classifyMemo(cand model.Candidate) (classify.Result, error) {
	key := text.Normalize(cand.Text) + "\x00" + cand.Sentence
	if res, ok := c.memo[key]; ok {
		return res, nil
	}
	res, err := c.classifier.Classify(cand)
	if err != nil {
		return classify.Result{}, err
	}
	c.memo[key] = res
	return res, nil
}

// suppressContainedMentions drops a mention whose span lies inside another
// accepted mention naming a superstring of it.
func suppressContainedMentions(ms []model.AcceptedMention) []model.AcceptedMention {
	if len(ms) < 2 {
		return ms
	}
	var kept []model.AcceptedMention
	for i, m := range ms {
		contained := false
		for j, other := range ms {
			if i == j || m.Span == other.Span {
				continue
			}
			if other.Span.Contains(m.Span) && strings.Contains(other.PlaceName, m.PlaceName) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, m)
		}
	}
	return kept
}

func joinReason(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "; " + b
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
