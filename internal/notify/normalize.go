package notify

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes characters (NFKD), strips combining marks, and drops
// anything still outside ASCII. Downstream transports count bytes, so the
// rendered text must be one byte per character.
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

func normalizeText(s string) string {
	out, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	return out
}
