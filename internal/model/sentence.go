package model

// SentenceContext is one sentence of a literary work plus a bounded window of
// surrounding text. Sentences arrive already segmented and cleaned of markup
// and ruby annotations by the upstream acquisition pipeline.
type SentenceContext struct {
	DocumentID   string `json:"document_id"`
	SentenceText string `json:"sentence_text"`
	BeforeText   string `json:"before_text,omitempty"`
	AfterText    string `json:"after_text,omitempty"`
}

// FullContext joins the window and the sentence for pattern matching.
func (s SentenceContext) FullContext() string {
	return s.BeforeText + s.SentenceText + s.AfterText
}
