package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/harutok/chimei/internal/knowledge"
	"github.com/harutok/chimei/internal/model"
	"github.com/harutok/chimei/internal/text"
)

// SourcePattern is the strategy name of the hierarchical pattern extractor.
const SourcePattern = "pattern"

// Chain-shape categories reported on pattern candidates.
const (
	CategoryRegionCountyVillage = "region_county_village"
	CategoryRegionCity          = "region_city"
	CategoryCityWard            = "city_ward"
)

// PatternExtractor finds administratively compound place names by chaining
// hierarchy levels: region→county→village, region→city and city→ward. Each
// level is a run of kanji closed by a level suffix, so free-standing fragments
// such as a bare 京都 inside 京都郡 never match on their own.
type PatternExtractor struct {
	m *knowledge.Matcher

	countyRe  *regexp.Regexp
	villageRe *regexp.Regexp
	cityRe    *regexp.Regexp
	wardRe    *regexp.Regexp
	cityScan  *regexp.Regexp
}

// NewPatternExtractor compiles the token shapes of kb into the extractor.
func NewPatternExtractor(kb *knowledge.Knowledge) (*PatternExtractor, error) {
	m := &kb.Matcher
	county, err := anchoredShape(m.County)
	if err != nil {
		return nil, fmt.Errorf("county shape: %w", err)
	}
	village, err := anchoredShape(m.Village)
	if err != nil {
		return nil, fmt.Errorf("village shape: %w", err)
	}
	city, err := anchoredShape(m.City)
	if err != nil {
		return nil, fmt.Errorf("city shape: %w", err)
	}
	ward, err := anchoredShape(m.Ward)
	if err != nil {
		return nil, fmt.Errorf("ward shape: %w", err)
	}
	// City→ward chains start anywhere in the sentence and only on the 市
	// suffix proper; 区町村 closers belong to the other chain shapes.
	scan, err := regexp.Compile(fmt.Sprintf(`\p{Han}{%d,%d}市`, m.City.Min, m.City.Max))
	if err != nil {
		return nil, fmt.Errorf("city scan: %w", err)
	}
	return &PatternExtractor{
		m:         m,
		countyRe:  county,
		villageRe: village,
		cityRe:    city,
		wardRe:    ward,
		cityScan:  scan,
	}, nil
}

func anchoredShape(s knowledge.TokenShape) (*regexp.Regexp, error) {
	return regexp.Compile(fmt.Sprintf(`^\p{Han}{%d,%d}[%s]`, s.Min, s.Max, s.Suffixes))
}

// Name implements Extractor.
func (e *PatternExtractor) Name() string { return SourcePattern }

// Extract implements Extractor. Matching runs on the sentence text alone;
// surrounding context is attached to the candidates for the classifier.
func (e *PatternExtractor) Extract(_ context.Context, sc model.SentenceContext) ([]model.Candidate, error) {
	s := sc.SentenceText
	if s == "" {
		return nil, nil
	}

	var cands []model.Candidate
	add := func(span model.Span, conf float64, category string) {
		if !e.boundariesOK(s, span) {
			return
		}
		before, after := contextWindow(s, span, 20)
		cands = append(cands, model.Candidate{
			Text:       s[span.Start:span.End],
			Span:       span,
			Source:     SourcePattern,
			Confidence: conf,
			Category:   category,
			Sentence:   s,
			Before:     before,
			After:      after,
		})
	}

	for _, region := range e.m.Regions {
		for _, start := range occurrences(s, region) {
			regionEnd, ok := e.regionSuffixEnd(s, start+len(region))
			if !ok {
				continue
			}
			rest := s[regionEnd:]

			// Deepest chain first; a full region→county→village match
			// subsumes the shorter readings of the same run.
			if county := e.countyRe.FindString(rest); county != "" {
				if village := e.villageRe.FindString(rest[len(county):]); village != "" {
					end := regionEnd + len(county) + len(village)
					add(model.Span{Start: start, End: end}, e.m.Tiers.FullChain, CategoryRegionCountyVillage)
					continue
				}
			}
			if city := e.cityRe.FindString(rest); city != "" {
				end := regionEnd + len(city)
				add(model.Span{Start: start, End: end}, e.m.Tiers.TwoLevel, CategoryRegionCity)
			}
		}
	}

	for _, loc := range e.cityScan.FindAllStringIndex(s, -1) {
		ward := e.wardRe.FindString(s[loc[1]:])
		if ward == "" {
			continue
		}
		add(model.Span{Start: loc[0], End: loc[1] + len(ward)}, e.m.Tiers.CityWard, CategoryCityWard)
	}

	return suppressContained(cands), nil
}

// regionSuffixEnd checks that the rune at offset is a region suffix and
// returns the byte offset just past it.
func (e *PatternExtractor) regionSuffixEnd(s string, offset int) (int, bool) {
	if offset >= len(s) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(s[offset:])
	if !strings.ContainsRune(e.m.RegionSuffixes, r) {
		return 0, false
	}
	return offset + size, true
}

// boundariesOK validates the characters adjoining the span. A match preceded
// by a kanji run is rejected only when a known personal-name marker appears in
// the preceding context; a trailing kanji is always legal, place names run
// straight into prose.
func (e *PatternExtractor) boundariesOK(s string, span model.Span) bool {
	if span.Start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:span.Start])
		if text.IsKanji(prev) && e.markerBefore(s[:span.Start]) {
			return false
		}
	}
	if span.End < len(s) {
		next, _ := utf8.DecodeRuneInString(s[span.End:])
		// Kanji after the match is fine, prose runs straight on. Kana that is
		// not a particle means the token keeps going and the match is partial.
		if !text.IsBoundary(next) && !text.IsParticle(next) && !text.IsKanji(next) {
			return false
		}
	}
	return true
}

// markerBefore reports whether a personal-name marker occurs within the ten
// runes preceding the match.
func (e *PatternExtractor) markerBefore(before string) bool {
	window := before
	for i := 0; i < 10 && len(window) > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(window)
		window = window[:len(window)-size]
	}
	tail := before[len(window):]
	for _, marker := range e.m.NameMarkers {
		if strings.Contains(tail, marker) {
			return true
		}
	}
	return false
}

// occurrences returns the byte offsets of every occurrence of sub in s.
func occurrences(s, sub string) []int {
	var offs []int
	for from := 0; ; {
		i := strings.Index(s[from:], sub)
		if i < 0 {
			return offs
		}
		offs = append(offs, from+i)
		from += i + len(sub)
	}
}
