package classify

import (
	"testing"

	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
)

func newClassifier(t *testing.T) *ContextClassifier {
	t.Helper()
	kb, err := knowledge.Default()
	if err != nil {
		t.Fatalf("load knowledge: %v", err)
	}
	return New(kb)
}

func classifyText(t *testing.T, c *ContextClassifier, candidate, sentence string) Result {
	t.Helper()
	res, err := c.Classify(model.Candidate{
		Text:     candidate,
		Source:   "ner",
		Sentence: sentence,
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	return res
}

func TestClassifyPlantContext(t *testing.T) {
	c := newClassifier(t)
	for _, sentence := range []string{
		"大きな萩が人の背より高く延びて茂みを作っていた。",
		"庭の萩の花が風に揺れていた。",
	} {
		res := classifyText(t, c, "萩", sentence)
		if res.IsPlace {
			t.Fatalf("萩 in plant context should not be a place: %q", sentence)
		}
		if res.Label != model.LabelPlant {
			t.Errorf("label = %q, want plant for %q", res.Label, sentence)
		}
		if res.Confidence != 0.90 {
			t.Errorf("confidence = %v, want rule confidence 0.90", res.Confidence)
		}
	}
}

func TestClassifyPlaceNameSurvivesPlantRule(t *testing.T) {
	c := newClassifier(t)
	res := classifyText(t, c, "萩", "萩へ行く汽車に乗った。")

	if !res.IsPlace {
		t.Fatalf("萩 as travel destination should be a place: %+v", res)
	}
	if res.Label != model.LabelPlace {
		t.Errorf("label = %q, want place", res.Label)
	}
}

func TestClassifyDirection(t *testing.T) {
	c := newClassifier(t)
	res := classifyText(t, c, "東", "西から東へ雲が流れた。")

	if res.IsPlace {
		t.Fatal("東 in direction context should not be a place")
	}
	if res.Label != model.LabelDirection {
		t.Errorf("label = %q, want direction", res.Label)
	}
}

func TestClassifyAmbiguousPerson(t *testing.T) {
	c := newClassifier(t)
	res := classifyText(t, c, "柏", "柏さんは静かに笑った。")

	if res.IsPlace {
		t.Fatal("柏 with person evidence should flip to the person reading")
	}
	if res.Label != model.LabelPerson {
		t.Errorf("label = %q, want person", res.Label)
	}
}

func TestClassifyAmbiguousPlaceWithoutPersonEvidence(t *testing.T) {
	c := newClassifier(t)
	res := classifyText(t, c, "柏", "柏に着いたのは夕方だった。")

	if !res.IsPlace {
		t.Fatalf("柏 without person evidence stays a place: %+v", res)
	}
	if res.RegionHint == "" {
		t.Error("ambiguous place should carry its modern-place hint")
	}
}

func TestClassifyClassicalProvince(t *testing.T) {
	c := newClassifier(t)
	res := classifyText(t, c, "伊勢", "伊勢の神宮に参拝する旅であった。")

	if !res.IsPlace {
		t.Fatal("伊勢 with 神宮 context is a place")
	}
	if res.Label != model.LabelHistoricalProvince {
		t.Errorf("label = %q, want historical_province", res.Label)
	}
	if res.RegionHint != "三重県伊勢市" {
		t.Errorf("region hint = %q", res.RegionHint)
	}
}

func TestClassifySparsePersonEvidenceKeepsPlace(t *testing.T) {
	c := newClassifier(t)
	for _, tc := range []struct{ name, sentence string }{
		{"小樽", "小樽は笑った。"},
		{"大阪", "大阪の先生だった。"},
	} {
		res := classifyText(t, c, tc.name, tc.sentence)
		if !res.IsPlace {
			t.Fatalf("%s with one person hit keeps the place reading: %+v", tc.name, res)
		}
		if res.Label != model.LabelPlace {
			t.Errorf("label = %q, want place for %q", res.Label, tc.sentence)
		}
	}

	// Dense person evidence still rejects.
	res := classifyText(t, c, "鎌倉", "鎌倉さんは笑って話して機嫌よく言った。")
	if res.IsPlace {
		t.Errorf("person-heavy context must reject: %+v", res)
	}
}

func TestClassifyNeutralContextDefaultsToPlace(t *testing.T) {
	c := newClassifier(t)
	res := classifyText(t, c, "鎌倉", "鎌倉という言葉が頭に浮かんだ。")

	if !res.IsPlace {
		t.Fatalf("neutral context with default bias keeps the place reading: %+v", res)
	}
}

func TestClassifyConfidenceBounds(t *testing.T) {
	c := newClassifier(t)
	sentences := []string{
		"鎌倉へ行って観光して名所を散歩して旅行を続けた。",
		"鎌倉さんは笑って話して機嫌よく言った。",
		"鎌倉。",
	}
	for _, s := range sentences {
		res := classifyText(t, c, "鎌倉", s)
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Errorf("confidence %v out of bounds for %q", res.Confidence, s)
		}
		if res.Confidence > 0.95 {
			t.Errorf("confidence %v above the configured ceiling for %q", res.Confidence, s)
		}
	}
}

func TestDenied(t *testing.T) {
	c := newClassifier(t)
	if !c.Denied("東") {
		t.Error("東 is on the deny list")
	}
	if c.Denied("鎌倉") {
		t.Error("鎌倉 is not on the deny list")
	}
}
