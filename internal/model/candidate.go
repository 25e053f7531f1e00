package model

// Span marks a matched region of a sentence as byte offsets into SentenceText.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether s fully contains other.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Candidate is a raw place-name candidate produced by one extraction source.
// Candidates live for a single sentence-processing pass.
type Candidate struct {
	Text       string  `json:"text"`
	Span       Span    `json:"span"`
	Source     string  `json:"source_method"`         // e.g. "pattern", "ner"
	Confidence float64 `json:"base_confidence"`       // in [0,1]
	Category   string  `json:"category,omitempty"`    // matched chain shape or source tag
	Sentence   string  `json:"sentence_text"`
	Before     string  `json:"before_text,omitempty"` // context window preceding the match
	After      string  `json:"after_text,omitempty"`  // context window following the match
}
