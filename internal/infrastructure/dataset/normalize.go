package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents replaces accented characters with their ASCII base form and
// unifies the apostrophe variants seen in the survey headers.
func FoldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}
	return strings.NewReplacer("’", "'", "‘", "'", " ", " ").Replace(folded)
}

// NormalizeColumn canonicalizes a CSV header: trimmed, lower-cased, spaces
// to underscores, accents folded. Idempotent, and applied identically at
// every lookup so stages never disagree on a column name.
func NormalizeColumn(name string) string {
	n := FoldAccents(strings.TrimSpace(name))
	n = strings.ToLower(n)
	n = strings.ReplaceAll(n, " ", "_")
	return n
}

// NormalizeValue canonicalizes a categorical cell: trimmed, lower-cased,
// accents folded. Used for genders, eligibility labels and district keys.
func NormalizeValue(v string) string {
	return strings.ToLower(FoldAccents(strings.TrimSpace(v)))
}
