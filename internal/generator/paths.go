package generator

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper removes combining marks after canonical decomposition,
// so "café" slugs to "cafe".
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify normalizes one slug segment to lowercase ascii with hyphens.
func Slugify(s string) string {
	if folded, _, err := transform.String(diacriticStripper, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	lastHyphen := true // swallow leading hyphens
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// PagePath maps a page slug to its artifact path: "/" becomes "/index.html",
// "/about" becomes "/about/index.html". Each slug segment is normalized.
func PagePath(slug string) string {
	trimmed := strings.Trim(slug, "/")
	if trimmed == "" {
		return "/index.html"
	}

	segments := strings.Split(trimmed, "/")
	normalized := make([]string, 0, len(segments))
	for _, seg := range segments {
		if s := Slugify(seg); s != "" {
			normalized = append(normalized, s)
		}
	}
	if len(normalized) == 0 {
		return "/index.html"
	}
	return "/" + strings.Join(normalized, "/") + "/index.html"
}
