package model

import "time"

// DocumentReport summarizes one processed document. Batch runs always
// complete; the report carries the per-document counters the run prints
// regardless of individual sentence or provider failures.
type DocumentReport struct {
	DocumentID  string    `json:"document_id"`
	ProcessedAt time.Time `json:"processed_at"`

	Sentences   int `json:"sentences"`
	Candidates  int `json:"candidates"`
	Accepted    int `json:"accepted_mentions"`
	Rejected    int `json:"rejected_candidates"`
	Geocoded    int `json:"geocoding_successes"`
	Unresolved  int `json:"geocoding_failures"`

	Mentions []AcceptedMention `json:"mentions"`
	Records  []GeocodedRecord  `json:"records"`
}

// Summary aggregates reports across a batch run.
type Summary struct {
	Documents  int `json:"documents"`
	Failures   int `json:"document_failures"`
	Sentences  int `json:"sentences"`
	Accepted   int `json:"accepted_mentions"`
	Rejected   int `json:"rejected_candidates"`
	Geocoded   int `json:"geocoding_successes"`
	Unresolved int `json:"geocoding_failures"`
}

// Add folds one document report into the summary.
func (s *Summary) Add(r *DocumentReport) {
	s.Documents++
	s.Sentences += r.Sentences
	s.Accepted += r.Accepted
	s.Rejected += r.Rejected
	s.Geocoded += r.Geocoded
	s.Unresolved += r.Unresolved
}
