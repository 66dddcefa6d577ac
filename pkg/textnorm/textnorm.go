// Package textnorm folds user supplied text into comparable keys:
// spreadsheet headers, answer texts and slugs.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Space collapses runs of white space into one space and trims the
// result.
func Space(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripDiacritics removes combining marks after canonical
// decomposition, so "Café" becomes "Cafe".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	res, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return res
}

// Fold makes a case, white space and diacritic insensitive key.
func Fold(s string) string {
	return Space(strings.ToLower(StripDiacritics(s)))
}

// Header normalises a spreadsheet header: case folded, with
// underscores, dashes, dots and slashes treated as spaces.
func Header(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.', '/':
			return ' '
		}
		return r
	}, s)
	return Space(s)
}

// Slug converts text to a lowercase ASCII-friendly slug. Letters of
// other scripts are kept, everything else becomes a dash.
func Slug(s string) string {
	s = strings.ToLower(StripDiacritics(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Stem returns a file name without directories and extension.
func Stem(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
