package query

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentClasses = map[rune]string{
	'a': "aàáâãäåAÀÁÂÃÄÅ",
	'c': "cçCÇ",
	'e': "eèéêëEÈÉÊË",
	'i': "iìíîïIÌÍÎÏ",
	'n': "nñNÑ",
	'o': "oòóôõöOÒÓÔÕÖ",
	'u': "uùúûüUÙÚÛÜ",
	'y': "yýÿYÝŸ",
}

// namePattern builds a POSIX regex that matches term as a substring whatever the accents.
// Like the dropdown search it drops the first "." and surrounding spaces.
func namePattern(term string) string {
	term = strings.TrimSpace(strings.Replace(term, ".", "", 1))
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), term)
	if err != nil {
		folded = term
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if class, ok := accentClasses[r]; ok {
			b.WriteString("[" + class + "]")
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}
