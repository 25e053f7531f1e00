package extract

import (
	"context"
	"testing"

	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
)

func newPattern(t *testing.T) *PatternExtractor {
	t.Helper()
	kb, err := knowledge.Default()
	if err != nil {
		t.Fatalf("load knowledge: %v", err)
	}
	ex, err := NewPatternExtractor(kb)
	if err != nil {
		t.Fatalf("build extractor: %v", err)
	}
	return ex
}

func extractFrom(t *testing.T, ex *PatternExtractor, sentence string) []model.Candidate {
	t.Helper()
	cands, err := ex.Extract(context.Background(), model.SentenceContext{
		DocumentID:   "doc",
		SentenceText: sentence,
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return cands
}

func TestPatternFullChain(t *testing.T) {
	ex := newPattern(t)
	sentence := "福岡県京都郡真崎村小川三四郎二十三年学生と正直に書いた。"
	cands := extractFrom(t, ex, sentence)

	if len(cands) != 1 {
		t.Fatalf("expected exactly one candidate, got %d: %+v", len(cands), cands)
	}
	c := cands[0]
	if c.Text != "福岡県京都郡真崎村" {
		t.Errorf("text = %q, want 福岡県京都郡真崎村", c.Text)
	}
	if c.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", c.Confidence)
	}
	if c.Category != CategoryRegionCountyVillage {
		t.Errorf("category = %q", c.Category)
	}
	if sentence[c.Span.Start:c.Span.End] != c.Text {
		t.Errorf("span does not slice back to text: %q", sentence[c.Span.Start:c.Span.End])
	}
}

func TestPatternRegionCity(t *testing.T) {
	ex := newPattern(t)
	cands := extractFrom(t, ex, "三人は千葉県船橋市に住んでいた。")

	if len(cands) != 1 {
		t.Fatalf("expected one candidate, got %d: %+v", len(cands), cands)
	}
	if cands[0].Text != "千葉県船橋市" {
		t.Errorf("text = %q, want 千葉県船橋市", cands[0].Text)
	}
	if cands[0].Confidence != 0.90 {
		t.Errorf("confidence = %v, want 0.90", cands[0].Confidence)
	}
	if cands[0].Category != CategoryRegionCity {
		t.Errorf("category = %q", cands[0].Category)
	}
}

func TestPatternCityWard(t *testing.T) {
	ex := newPattern(t)
	cands := extractFrom(t, ex, "横浜市中区の港が見えた。")

	if len(cands) == 0 {
		t.Fatal("expected a city-ward candidate")
	}
	found := false
	for _, c := range cands {
		if c.Text == "横浜市中区" && c.Category == CategoryCityWard {
			found = true
			if c.Confidence != 0.85 {
				t.Errorf("confidence = %v, want 0.85", c.Confidence)
			}
		}
	}
	if !found {
		t.Errorf("横浜市中区 not found in %+v", cands)
	}
}

func TestPatternNoBareRegion(t *testing.T) {
	ex := newPattern(t)
	// 京都 without an administrative suffix never matches on its own.
	cands := extractFrom(t, ex, "京都へ行きたいと思っていた。")
	if len(cands) != 0 {
		t.Errorf("expected no candidates, got %+v", cands)
	}
}

func TestPatternEmptySentence(t *testing.T) {
	ex := newPattern(t)
	cands := extractFrom(t, ex, "")
	if cands != nil {
		t.Errorf("expected nil for empty sentence, got %+v", cands)
	}
}

func TestPatternNameMarkerBlocksMatch(t *testing.T) {
	ex := newPattern(t)
	// 子爵千葉県... : the marker directly before the kanji run marks a person.
	cands := extractFrom(t, ex, "子爵千葉県太郎の屋敷を訪ねた。")
	for _, c := range cands {
		if c.Text == "千葉県太郎" || c.Span.Start == len("子爵") {
			t.Errorf("match adjoining a name marker should be rejected: %+v", c)
		}
	}
}

func TestPatternIdempotent(t *testing.T) {
	ex := newPattern(t)
	sentence := "福岡県京都郡真崎村から千葉県船橋市へ移った。"
	first := extractFrom(t, ex, sentence)
	second := extractFrom(t, ex, sentence)

	if len(first) != len(second) {
		t.Fatalf("runs disagree: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("candidate %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
