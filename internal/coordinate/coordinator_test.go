package coordinate

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/harutok/chimei/internal/classify"
	"github.com/harutok/chimei/internal/extract"
	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
)

type stubExtractor struct {
	name  string
	cands map[string][]model.Candidate // keyed by sentence text
	err   error
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(_ context.Context, sc model.SentenceContext) ([]model.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cands[sc.SentenceText], nil
}

type failingClassifier struct{ denied map[string]bool }

func (f *failingClassifier) Classify(model.Candidate) (classify.Result, error) {
	return classify.Result{}, errors.New("classifier down")
}

func (f *failingClassifier) Denied(name string) bool { return f.denied[name] }

func mustKB(t *testing.T) *knowledge.Knowledge {
	t.Helper()
	kb, err := knowledge.Default()
	if err != nil {
		t.Fatalf("load knowledge: %v", err)
	}
	return kb
}

func cand(sentence, text, source string, conf float64) model.Candidate {
	start := strings.Index(sentence, text)
	return model.Candidate{
		Text:       text,
		Span:       model.Span{Start: start, End: start + len(text)},
		Source:     source,
		Confidence: conf,
		Sentence:   sentence,
	}
}

func TestCoordinatorPrefersPatternOverNER(t *testing.T) {
	kb := mustKB(t)
	sentence := "三人は千葉県船橋市に住んでいた。"

	pattern := &stubExtractor{name: "pattern", cands: map[string][]model.Candidate{
		sentence: {cand(sentence, "千葉県船橋市", "pattern", 0.90)},
	}}
	ner := &stubExtractor{name: "ner", cands: map[string][]model.Candidate{
		sentence: {cand(sentence, "船橋", "ner", 0.75)},
	}}

	c := New(kb, classify.New(kb), false, zap.NewNop(), pattern, ner)
	mentions, _, err := c.Run(context.Background(), []model.SentenceContext{{SentenceText: sentence}})
	if err != nil {
		t.Fatal(err)
	}

	if len(mentions) != 1 {
		t.Fatalf("expected a single mention, got %+v", mentions)
	}
	m := mentions[0]
	if m.PlaceName != "千葉県船橋市" || m.Source != "pattern" {
		t.Errorf("wrong winner: %+v", m)
	}
	if m.Confidence != 0.90 {
		t.Errorf("trusted pattern confidence should pass through, got %v", m.Confidence)
	}
}

func TestCoordinatorSameNameMergedAcrossSources(t *testing.T) {
	kb := mustKB(t)
	sentence := "上野の駅に着いた。"

	pattern := &stubExtractor{name: "pattern", cands: map[string][]model.Candidate{}}
	nerA := &stubExtractor{name: "ner", cands: map[string][]model.Candidate{
		sentence: {cand(sentence, "上野", "ner", 0.75)},
	}}

	c := New(kb, classify.New(kb), false, zap.NewNop(), pattern, nerA)
	mentions, _, err := c.Run(context.Background(), []model.SentenceContext{{SentenceText: sentence}})
	if err != nil {
		t.Fatal(err)
	}

	if len(mentions) != 1 {
		t.Fatalf("expected one mention, got %+v", mentions)
	}
	if mentions[0].Label != model.LabelPlace {
		t.Errorf("label = %q", mentions[0].Label)
	}
	// Classified place gets the boost over its base reliability.
	if mentions[0].Confidence <= 0.75 {
		t.Errorf("expected boosted confidence, got %v", mentions[0].Confidence)
	}
}

func TestCoordinatorRejectsNonPlace(t *testing.T) {
	kb := mustKB(t)
	sentence := "庭の萩の花が揺れた。"

	ner := &stubExtractor{name: "ner", cands: map[string][]model.Candidate{
		sentence: {cand(sentence, "萩", "ner", 0.75)},
	}}

	c := New(kb, classify.New(kb), false, zap.NewNop(), ner)
	mentions, stats, err := c.Run(context.Background(), []model.SentenceContext{{SentenceText: sentence}})
	if err != nil {
		t.Fatal(err)
	}

	if len(mentions) != 0 {
		t.Fatalf("plant reading must be rejected, got %+v", mentions)
	}
	if stats.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", stats.Rejected)
	}
}

func TestCoordinatorForcedPatternClassification(t *testing.T) {
	kb := mustKB(t)
	plant := "庭の萩の花が揺れた。"
	town := "三人は千葉県船橋市に住んでいた。"

	pattern := &stubExtractor{name: "pattern", cands: map[string][]model.Candidate{
		plant: {cand(plant, "萩", "pattern", 0.95)},
		town:  {cand(town, "千葉県船橋市", "pattern", 0.90)},
	}}
	input := []model.SentenceContext{{SentenceText: plant}, {SentenceText: town}}

	// Default mode trusts the pattern source as-is.
	trusted := New(kb, classify.New(kb), false, zap.NewNop(), pattern)
	mentions, _, err := trusted.Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	if len(mentions) != 2 {
		t.Fatalf("trusted pattern candidates pass through unclassified, got %+v", mentions)
	}

	forced := New(kb, classify.New(kb), true, zap.NewNop(), pattern)
	mentions, stats, err := forced.Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	if len(mentions) != 1 {
		t.Fatalf("plant reading must be rejected under forced classification, got %+v", mentions)
	}
	if stats.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", stats.Rejected)
	}
	m := mentions[0]
	if m.PlaceName != "千葉県船橋市" {
		t.Errorf("survivor = %q", m.PlaceName)
	}
	if m.Confidence <= 0.90 {
		t.Errorf("classified place gets the boost over its base confidence, got %v", m.Confidence)
	}
}

func TestCoordinatorExtractorFailureIsIsolated(t *testing.T) {
	kb := mustKB(t)
	sentence := "三人は千葉県船橋市に住んでいた。"

	broken := &stubExtractor{name: "ner", err: errors.New("provider unreachable")}
	pattern := &stubExtractor{name: "pattern", cands: map[string][]model.Candidate{
		sentence: {cand(sentence, "千葉県船橋市", "pattern", 0.90)},
	}}

	c := New(kb, classify.New(kb), false, zap.NewNop(), broken, pattern)
	mentions, _, err := c.Run(context.Background(), []model.SentenceContext{{SentenceText: sentence}})
	if err != nil {
		t.Fatal(err)
	}
	if len(mentions) != 1 || mentions[0].PlaceName != "千葉県船橋市" {
		t.Errorf("pattern result should survive a failing sibling source: %+v", mentions)
	}
}

func TestCoordinatorDegradedClassification(t *testing.T) {
	kb := mustKB(t)
	sentence := "鎌倉と東のことを考えた。"

	ner := &stubExtractor{name: "ner", cands: map[string][]model.Candidate{
		sentence: {
			cand(sentence, "鎌倉", "ner", 0.75),
			cand(sentence, "東", "ner", 0.75),
		},
	}}
	cl := &failingClassifier{denied: map[string]bool{"東": true}}

	c := New(kb, cl, false, zap.NewNop(), ner)
	mentions, _, err := c.Run(context.Background(), []model.SentenceContext{{SentenceText: sentence}})
	if err != nil {
		t.Fatal(err)
	}

	if len(mentions) != 1 {
		t.Fatalf("expected only the safe name to survive, got %+v", mentions)
	}
	m := mentions[0]
	if m.PlaceName != "鎌倉" {
		t.Errorf("survivor = %q", m.PlaceName)
	}
	if m.Confidence >= 0.75 {
		t.Errorf("degraded mention keeps reduced confidence, got %v", m.Confidence)
	}
}

func TestCoordinatorIdempotent(t *testing.T) {
	kb := mustKB(t)
	sentence := "福岡県京都郡真崎村から上野へ出た。"

	ex, err := extract.NewPatternExtractor(kb)
	if err != nil {
		t.Fatal(err)
	}
	ner := &stubExtractor{name: "ner", cands: map[string][]model.Candidate{
		sentence: {cand(sentence, "上野", "ner", 0.75)},
	}}
	input := []model.SentenceContext{{SentenceText: sentence}}

	first, _, err := New(kb, classify.New(kb), false, zap.NewNop(), ex, ner).Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := New(kb, classify.New(kb), false, zap.NewNop(), ex, ner).Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ:\n%+v\n%+v", first, second)
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Span.Start > first[i].Span.Start {
			t.Errorf("mentions out of span order: %+v", first)
		}
	}
}

func TestCoordinatorCancellation(t *testing.T) {
	kb := mustKB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(kb, classify.New(kb), false, zap.NewNop(), &stubExtractor{name: "ner"})
	_, _, err := c.Run(ctx, []model.SentenceContext{{SentenceText: "東京都文京区の話。"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
