package manifest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify derives a URL segment from a title: accents are stripped after
// NFD decomposition, letters are lowercased and every other run of
// characters collapses to a single hyphen. Letters of any script are kept.
func Slugify(title string) string {
	title = norm.NFD.String(title)

	var b strings.Builder
	pendingDash := false
	for _, r := range title {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
		}
	}

	return norm.NFC.String(b.String())
}
