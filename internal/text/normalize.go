// Package text holds the Japanese text helpers shared by the extractor,
// classifier and resolver: name normalization and the character classes used
// for match-boundary validation.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var kanaVariants = strings.NewReplacer(
	"ヶ", "が",
	"ケ", "が",
	"ヵ", "が",
	"　", " ",
)

// Normalize folds a place name to its lookup form: NFKC, half/full width
// folded, kana counter variants unified, outer space trimmed. Gazetteer keys
// and cache keys are always normalized with this.
func Normalize(name string) string {
	s := norm.NFKC.String(name)
	s = width.Fold.String(s)
	s = kanaVariants.Replace(s)
	return strings.TrimSpace(s)
}

// Canonical returns the canonical form of a place name: normalized, with a
// trailing prefecture marker (都/府/県) trimmed when something remains.
// "千葉県" and "千葉" geocode to the same place.
func Canonical(name string) string {
	s := Normalize(name)
	if base, ok := strings.CutSuffix(s, "都"); ok && base != "" && base != "京" {
		return base
	}
	if base, ok := strings.CutSuffix(s, "府"); ok && base != "" {
		return base
	}
	if base, ok := strings.CutSuffix(s, "県"); ok && base != "" {
		return base
	}
	return s
}

// IsKanji reports whether r is a CJK ideograph.
func IsKanji(r rune) bool {
	return unicode.In(r, unicode.Han)
}

// Particles that may legally border a place name.
const particles = "はがをにでへとのからもや"

// IsParticle reports whether r is a case/topic particle.
func IsParticle(r rune) bool {
	return strings.ContainsRune(particles, r)
}

// IsBoundary reports whether r terminates a token: punctuation, whitespace,
// brackets or ASCII digits and their full-width forms.
func IsBoundary(r rune) bool {
	if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '。', '、', '！', '？', '「', '」', '（', '）', '・':
		return true
	}
	return false
}
