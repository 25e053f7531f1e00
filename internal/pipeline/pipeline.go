// Package pipeline wires segmentation, extraction, classification and
// geocoding into the per-document processing flow.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harutok/chimei/internal/classify"
	"github.com/harutok/chimei/internal/coordinate"
	"github.com/harutok/chimei/internal/extract"
	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
	"github.com/harutok/chimei/internal/text"
)

// Resolver geocodes accepted mentions. Nil disables the geocoding stage.
type Resolver interface {
	Resolve(ctx context.Context, docID string, m model.AcceptedMention) model.GeocodedRecord
}

// Pipeline processes documents one at a time. It is safe for concurrent use;
// per-document state lives in the coordinator built per call.
type Pipeline struct {
	kb              *knowledge.Knowledge
	classifier      coordinate.Classifier
	extractors      []extract.Extractor
	resolver        Resolver
	sink            ResultSink
	classifyPattern bool
	log             *zap.Logger
}

// Options collects the pipeline's collaborators.
type Options struct {
	Knowledge       *knowledge.Knowledge
	Extractors      []extract.Extractor
	Resolver        Resolver // nil disables geocoding
	Sink            ResultSink
	ClassifyPattern bool
	Logger          *zap.Logger
}

// New assembles a pipeline. The classifier is always the knowledge-driven
// one; tests exercising degraded classification stub the coordinator directly.
func New(opts Options) *Pipeline {
	return &Pipeline{
		kb:              opts.Knowledge,
		classifier:      classify.New(opts.Knowledge),
		extractors:      opts.Extractors,
		resolver:        opts.Resolver,
		sink:            opts.Sink,
		classifyPattern: opts.ClassifyPattern,
		log:             opts.Logger,
	}
}

// ProcessDocument runs the full flow over one document and commits the report
// to the sink in one piece. Only context cancellation aborts a document;
// everything else degrades to counters in the report.
func (p *Pipeline) ProcessDocument(ctx context.Context, docID, body string) (*model.DocumentReport, error) {
	sentences := segment(docID, body)

	coord := coordinate.New(p.kb, p.classifier, p.classifyPattern, p.log, p.extractors...)
	mentions, stats, err := coord.Run(ctx, sentences)
	if err != nil {
		return nil, err
	}

	report := &model.DocumentReport{
		DocumentID:  docID,
		ProcessedAt: time.Now().UTC(),
		Sentences:   len(sentences),
		Candidates:  stats.Candidates,
		Accepted:    stats.Accepted,
		Rejected:    stats.Rejected,
		Mentions:    mentions,
	}

	for _, m := range mentions {
		if !model.IsPlaceLabel(m.Label) {
			continue
		}
		if p.resolver == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := p.resolver.Resolve(ctx, docID, m)
		report.Records = append(report.Records, rec)
		if rec.Resolved() {
			report.Geocoded++
		} else {
			report.Unresolved++
		}
	}

	if p.sink != nil {
		if err := p.sink.Commit(ctx, report); err != nil {
			return nil, err
		}
	}
	p.log.Info("document processed",
		zap.String("document", docID),
		zap.Int("sentences", report.Sentences),
		zap.Int("mentions", report.Accepted),
		zap.Int("geocoded", report.Geocoded))
	return report, nil
}

// segment splits the document body and attaches neighbor sentences as
// classification context.
func segment(docID, body string) []model.SentenceContext {
	raw := text.SplitSentences(body)
	out := make([]model.SentenceContext, len(raw))
	for i, s := range raw {
		sc := model.SentenceContext{DocumentID: docID, SentenceText: s}
		if i > 0 {
			sc.BeforeText = raw[i-1]
		}
		if i+1 < len(raw) {
			sc.AfterText = raw[i+1]
		}
		out[i] = sc
	}
	return out
}
