package text

import "strings"

// Sentence terminators for Japanese prose. Closing quotes stay attached to
// the sentence they end.
const terminators = "。！？!?"

// SplitSentences cuts a document into sentences. Terminators and a following
// closing bracket are kept with their sentence; blank lines always break.
func SplitSentences(doc string) []string {
	var (
		sentences []string
		current   strings.Builder
	)
	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(doc)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush()
			continue
		}
		current.WriteRune(r)
		if strings.ContainsRune(terminators, r) {
			for i+1 < len(runes) && (runes[i+1] == '」' || runes[i+1] == '』' || runes[i+1] == '）') {
				current.WriteRune(runes[i+1])
				i++
			}
			flush()
		}
	}
	flush()
	return sentences
}
