package utils

import (
	"regexp"

	"github.com/gosimple/slug"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Slugify transliterates s to ASCII and joins its alphanumeric runs with
// hyphens. The result is empty when nothing in s transliterates.
func Slugify(s string) string {
	return slug.Make(s)
}

// ValidSlug reports whether s is a non-empty run of lowercase letters,
// digits, hyphens and underscores.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
