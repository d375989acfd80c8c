package engine

import (
	"strings"
	"unicode"
)

// ID is a normalized candidate identifier. Values are produced exclusively by
// NormalizeID; holding an ID means the formatting-stripping invariant already
// holds, so IDs compare with == and key sets/maps directly.
//
// Raw roster identifiers arrive with ad hoc punctuation ("123-456-789 00" vs
// "12345678900"). Comparing raw strings is the single most likely source of
// incorrect exclusion, so nothing downstream of NormalizeID touches them.
type ID string

// NormalizeID canonicalizes a raw candidate identifier: every rune that is
// not a letter or digit is dropped and the remainder is uppercased. Total and
// idempotent.
func NormalizeID(raw string) ID {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return ID(b.String())
}
