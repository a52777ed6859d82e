package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalized is the canonical comparable form of a piece of text: the
// normalized string plus its token sequence in original order.
type Normalized struct {
	Text   string
	Tokens []string
}

// Empty reports whether the text normalized to no tokens.
func (n Normalized) Empty() bool {
	return len(n.Tokens) == 0
}

// foldTransformer strips diacritics by decomposing to NFD, removing
// combining marks, and recomposing.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes text for comparison: diacritics folded to base
// letters, lowercased, runs of non-alphanumeric characters collapsed to a
// single separator, leading/trailing separators trimmed, then tokenized.
// It is pure, total over any input string, and idempotent.
func Normalize(text string) Normalized {
	folded, _, err := transform.String(foldTransformer, text)
	if err != nil {
		// Malformed UTF-8 passes through unfolded; the rules below still apply.
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}

	normText := b.String()
	if normText == "" {
		return Normalized{}
	}
	return Normalized{Text: normText, Tokens: strings.Split(normText, " ")}
}
