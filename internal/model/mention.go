package model

// Classification labels. LabelPlace and LabelHistoricalProvince are the two
// accepted place-type labels; everything else marks a rejected candidate.
const (
	LabelPlace              = "place"
	LabelHistoricalProvince = "historical_province"
	LabelPerson             = "person"
	LabelPlant              = "plant"
	LabelDirection          = "direction"
	LabelBuildingPart       = "building_part"
	LabelGenericNoun        = "generic_noun"
)

// IsPlaceLabel reports whether label is an accepted place-type label.
// Only mentions with an accepted label may reach the geocoding resolver.
func IsPlaceLabel(label string) bool {
	return label == LabelPlace || label == LabelHistoricalProvince
}

// AcceptedMention is a deduplicated, classified place-name mention emitted by
// the extraction coordinator. One per distinct, non-redundant span per sentence.
type AcceptedMention struct {
	PlaceName    string  `json:"place_name"`
	Span         Span    `json:"span"`
	Confidence   float64 `json:"confidence"`
	Source       string  `json:"source_method"`
	Label        string  `json:"classification_label"`
	Reasoning    string  `json:"reasoning,omitempty"`
	RegionHint   string  `json:"region_hint,omitempty"` // modern-day region for classical names
	Sentence     string  `json:"sentence_text"`
	Before       string  `json:"context_before,omitempty"`
	After        string  `json:"context_after,omitempty"`
}
