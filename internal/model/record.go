package model

// ResolutionFailed is the resolution_source recorded when no layer produced
// coordinates for a mention.
const ResolutionFailed = "failed"

// GeocodedRecord is the final output of the geocoding resolver. Latitude and
// Longitude are nil when resolution failed. Confidence is the product of the
// mention confidence and the resolving layer's confidence, clamped to [0,1].
type GeocodedRecord struct {
	ID               string   `json:"id"`
	DocumentID       string   `json:"document_id"`
	PlaceName        string   `json:"place_name"`
	CanonicalName    string   `json:"canonical_name"`
	Span             Span     `json:"span"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Confidence       float64  `json:"confidence"`
	ResolutionSource string   `json:"resolution_source"`
	RegionHint       string   `json:"region_hint,omitempty"`
	Sentence         string   `json:"sentence_text"` // representative context for replay/audit
}

// Resolved reports whether the record carries coordinates.
func (r GeocodedRecord) Resolved() bool {
	return r.Latitude != nil && r.Longitude != nil
}
