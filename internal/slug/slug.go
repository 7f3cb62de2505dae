// Package slug derives URL-safe identifiers from human-readable names.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks (accents), then
// recomposes. "Été" becomes "Ete".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make derives a slug: diacritics stripped, lowercased, any run of
// non-alphanumeric characters collapsed to a single hyphen, leading and
// trailing hyphens trimmed. Returns "" when nothing survives.
func Make(name string) string {
	stripped, _, err := transform.String(stripMarks, name)
	if err != nil {
		// Transformation only fails on malformed input; fall back to the
		// raw name so the caller still gets a deterministic slug.
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	prevHyphen := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevHyphen = false
			continue
		}
		if !prevHyphen && b.Len() > 0 {
			b.WriteByte('-')
			prevHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
