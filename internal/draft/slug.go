package draft

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	slugStrip  = regexp.MustCompile(`[^\w\s\v\p{Z}\x{FEFF}-]`)
	slugSpaces = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// Slugify derives the URL identifier of a title: lower-cased, non-word
// characters removed, whitespace runs (including U+3000 and other Unicode
// spaces) turned into single hyphens and leading/trailing hyphens trimmed.
//
// Titles made only of non-ASCII letters (e.g. Chinese) strip down to nothing;
// those get "post-" plus a short hash of the trimmed title so the result is
// still deterministic and non-empty.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug != "" {
		return slug
	}

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ""
	}
	sum := sha1.Sum([]byte(trimmed))
	return "post-" + hex.EncodeToString(sum[:])[:8]
}
