package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so accented names match their
// plain-ASCII spellings (e.g. "Lim-Dûl's Vault" == "Lim-Dul's Vault").
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a card name for map lookups: accents folded,
// whitespace trimmed, and double-faced names collapsed to the front face.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if front, _, found := strings.Cut(name, " // "); found {
		name = front
	}

	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		// Fold failures leave the name as-is rather than dropping the card.
		return name
	}
	return folded
}
