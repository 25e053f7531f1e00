// Package knowledge loads and validates the domain knowledge tables: region
// and suffix catalogues for the pattern matcher, indicator catalogues for the
// context classifier, ambiguous-name and classical-province tables, curated
// gazetteers and per-source extraction profiles. Everything here is data
// subject to tuning; code never hard-codes a table entry.
package knowledge

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// TokenShape bounds one hierarchy level of a compound place name: a run of
// Min..Max kanji followed by one of the Suffixes runes.
type TokenShape struct {
	Min      int    `yaml:"min"`
	Max      int    `yaml:"max"`
	Suffixes string `yaml:"suffixes"`
}

// Tiers are the confidence constants assigned by matched chain depth.
type Tiers struct {
	FullChain float64 `yaml:"full_chain"` // region → county → village
	TwoLevel  float64 `yaml:"two_level"`  // region → city
	CityWard  float64 `yaml:"city_ward"`  // city → ward
}

// Matcher configures the hierarchical pattern extractor.
type Matcher struct {
	Regions        []string   `yaml:"regions"`
	RegionSuffixes string     `yaml:"region_suffixes"`
	County         TokenShape `yaml:"county"`
	Village        TokenShape `yaml:"village"`
	City           TokenShape `yaml:"city"`
	Ward           TokenShape `yaml:"ward"`
	NameMarkers    []string   `yaml:"name_markers"`
	Tiers          Tiers      `yaml:"tiers"`
}

// ContextRule is one deterministic non-place rule (classifier stage A).
type ContextRule struct {
	Pattern    string  `yaml:"pattern"`
	Category   string  `yaml:"category"`
	Confidence float64 `yaml:"confidence"`

	re *regexp.Regexp
}

// Find returns the matched span of the full context, or "" when the rule
// does not fire.
func (r *ContextRule) Find(context string) string {
	return r.re.FindString(context)
}

// Covers reports whether any match of the rule in context contains inner.
// A rule firing elsewhere in the sentence says nothing about this candidate.
func (r *ContextRule) Covers(context, inner string) bool {
	for _, m := range r.re.FindAllString(context, -1) {
		if strings.Contains(m, inner) {
			return true
		}
	}
	return false
}

// Classifier configures the two-stage context classifier.
type Classifier struct {
	NonPlaceRules        []ContextRule `yaml:"non_place_rules"`
	PlaceIndicators      []string      `yaml:"place_indicators"`
	PersonIndicators     []string      `yaml:"person_indicators"`
	HistoricalIndicators []string      `yaml:"historical_indicators"`
	Bias                 float64       `yaml:"bias"`
	PersonFloor          int           `yaml:"person_floor"`
	IndicatorStep        float64       `yaml:"indicator_step"`
	BaseConfidence       float64       `yaml:"base_confidence"`
	MaxConfidence        float64       `yaml:"max_confidence"`
	DenyList             []string      `yaml:"deny_list"`

	placeRes      []*regexp.Regexp
	personRes     []*regexp.Regexp
	historicalRes []*regexp.Regexp
}

// CountPlace returns the number of place-indicator patterns matching context.
func (c *Classifier) CountPlace(context string) int { return countMatches(c.placeRes, context) }

// CountPerson returns the number of person-indicator patterns matching context.
func (c *Classifier) CountPerson(context string) int { return countMatches(c.personRes, context) }

// CountHistorical returns the number of historical-indicator patterns matching context.
func (c *Classifier) CountHistorical(context string) int {
	return countMatches(c.historicalRes, context)
}

func countMatches(res []*regexp.Regexp, s string) int {
	n := 0
	for _, re := range res {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// AmbiguousEntry weights a name that doubles as a personal name.
type AmbiguousEntry struct {
	PersonLikelihood float64 `yaml:"person_likelihood"`
	ModernPlace      string  `yaml:"modern_place"`
}

// ClassicalEntry maps a classical province name to its present-day region.
type ClassicalEntry struct {
	ModernRegion string   `yaml:"modern_region"`
	Lat          float64  `yaml:"lat"`
	Lon          float64  `yaml:"lon"`
	Keywords     []string `yaml:"keywords"`
}

// Coord is one curated gazetteer entry.
type Coord struct {
	Lat    float64 `yaml:"lat"`
	Lon    float64 `yaml:"lon"`
	Region string  `yaml:"region"`
}

// GazetteerTable is a named curated lookup table, consulted in file order.
type GazetteerTable struct {
	Name       string           `yaml:"name"`
	Confidence float64          `yaml:"confidence"`
	Entries    map[string]Coord `yaml:"entries"`
}

// SourceProfile is the static trust profile of one extraction source.
type SourceProfile struct {
	BaseReliability float64 `yaml:"base_reliability"`
	Priority        int     `yaml:"priority"` // lower number wins arbitration
	TrustThreshold  float64 `yaml:"trust_threshold"`
}

// Resolution holds resolver-level confidence constants.
type Resolution struct {
	ClassicalConfidence float64 `yaml:"classical_confidence"`
	ExternalConfidence  float64 `yaml:"external_confidence"`
}

// Knowledge is the complete, immutable knowledge base. It is constructed once
// at startup and shared read-only by every component.
type Knowledge struct {
	Version    int                       `yaml:"version"`
	Matcher    Matcher                   `yaml:"matcher"`
	Classifier Classifier                `yaml:"classifier"`
	Ambiguous  map[string]AmbiguousEntry `yaml:"ambiguous"`
	Classical  map[string]ClassicalEntry `yaml:"classical"`
	Gazetteers []GazetteerTable          `yaml:"gazetteers"`
	Profiles   map[string]SourceProfile  `yaml:"profiles"`
	Resolution Resolution                `yaml:"resolution"`
}

// Parse decodes, compiles and validates a knowledge YAML document.
func Parse(data []byte) (*Knowledge, error) {
	var kb Knowledge
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("decode knowledge tables: %w", err)
	}
	if err := kb.compile(); err != nil {
		return nil, err
	}
	if err := kb.validate(); err != nil {
		return nil, err
	}
	return &kb, nil
}

func (kb *Knowledge) compile() error {
	for i := range kb.Classifier.NonPlaceRules {
		rule := &kb.Classifier.NonPlaceRules[i]
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("non_place_rules[%d] %q: %w", i, rule.Pattern, err)
		}
		rule.re = re
	}
	var err error
	if kb.Classifier.placeRes, err = compileAll("place_indicators", kb.Classifier.PlaceIndicators); err != nil {
		return err
	}
	if kb.Classifier.personRes, err = compileAll("person_indicators", kb.Classifier.PersonIndicators); err != nil {
		return err
	}
	if kb.Classifier.historicalRes, err = compileAll("historical_indicators", kb.Classifier.HistoricalIndicators); err != nil {
		return err
	}
	return nil
}

func compileAll(table string, patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] %q: %w", table, i, p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// knownSources names the extraction strategies the coordinator can run.
// The profiles table must cover all of them.
var knownSources = []string{"pattern", "ner"}

// validate rejects empty or malformed tables. Running with a partial table
// would silently suppress every match of that category, so this is fatal.
func (kb *Knowledge) validate() error {
	if len(kb.Matcher.Regions) == 0 {
		return fmt.Errorf("knowledge: matcher.regions is empty")
	}
	if kb.Matcher.RegionSuffixes == "" {
		return fmt.Errorf("knowledge: matcher.region_suffixes is empty")
	}
	for _, shape := range []struct {
		name string
		s    TokenShape
	}{
		{"county", kb.Matcher.County},
		{"village", kb.Matcher.Village},
		{"city", kb.Matcher.City},
		{"ward", kb.Matcher.Ward},
	} {
		if shape.s.Min <= 0 || shape.s.Max < shape.s.Min || shape.s.Suffixes == "" {
			return fmt.Errorf("knowledge: matcher.%s shape is malformed", shape.name)
		}
	}
	for _, tier := range []float64{kb.Matcher.Tiers.FullChain, kb.Matcher.Tiers.TwoLevel, kb.Matcher.Tiers.CityWard} {
		if tier <= 0 || tier > 1 {
			return fmt.Errorf("knowledge: matcher.tiers must be in (0,1]")
		}
	}
	if len(kb.Classifier.NonPlaceRules) == 0 {
		return fmt.Errorf("knowledge: classifier.non_place_rules is empty")
	}
	for i, rule := range kb.Classifier.NonPlaceRules {
		if rule.Category == "" || rule.Confidence <= 0 || rule.Confidence > 1 {
			return fmt.Errorf("knowledge: non_place_rules[%d] is malformed", i)
		}
	}
	if len(kb.Classifier.PlaceIndicators) == 0 || len(kb.Classifier.PersonIndicators) == 0 {
		return fmt.Errorf("knowledge: classifier indicator catalogues are empty")
	}
	if kb.Classifier.PersonFloor < 1 {
		return fmt.Errorf("knowledge: classifier.person_floor must be at least 1")
	}
	if len(kb.Ambiguous) == 0 {
		return fmt.Errorf("knowledge: ambiguous table is empty")
	}
	if len(kb.Classical) == 0 {
		return fmt.Errorf("knowledge: classical table is empty")
	}
	if len(kb.Gazetteers) == 0 {
		return fmt.Errorf("knowledge: gazetteers is empty")
	}
	for _, g := range kb.Gazetteers {
		if g.Name == "" || len(g.Entries) == 0 {
			return fmt.Errorf("knowledge: gazetteer %q has no entries", g.Name)
		}
		if g.Confidence <= 0 || g.Confidence > 1 {
			return fmt.Errorf("knowledge: gazetteer %q confidence out of range", g.Name)
		}
	}
	if len(kb.Profiles) == 0 {
		return fmt.Errorf("knowledge: profiles is empty")
	}
	for name, p := range kb.Profiles {
		if p.BaseReliability <= 0 || p.BaseReliability > 1 || p.TrustThreshold < 0 || p.TrustThreshold > 1 {
			return fmt.Errorf("knowledge: profile %q out of range", name)
		}
	}
	// Every wired extraction source needs its trust profile; a zero-value
	// profile would give priority 0 and accept everything.
	for _, source := range knownSources {
		if _, ok := kb.Profiles[source]; !ok {
			return fmt.Errorf("knowledge: profiles missing source %q", source)
		}
	}
	return nil
}
