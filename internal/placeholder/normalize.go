package placeholder

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// viLetterFold maps the Vietnamese letters that NFD decomposition alone does
// not reduce to ASCII.
var viLetterFold = strings.NewReplacer(
	"đ", "d", "Đ", "D",
)

var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Transliterate converts Vietnamese text to its base Latin letters:
// diacritics are stripped by NFD decomposition and đ/Đ folded to d/D.
func Transliterate(s string) string {
	s = viLetterFold.Replace(s)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeKey reduces a candidate key to its canonical form: transliterated,
// lowercased, every non-alphanumeric run collapsed to one underscore, leading
// and trailing underscores trimmed. Idempotent: NormalizeKey(NormalizeKey(x))
// == NormalizeKey(x).
func NormalizeKey(s string) string {
	s = strings.ToLower(Transliterate(s))

	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}
