package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/yukikurage/assessment-api/internal/constants"
	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
)

// Slugify lowercases s, strips diacritics and collapses everything else into single hyphens.
// The result is at most constants.SlugMaxLength characters; an empty result becomes "template".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}

	s = reNonAlnum.ReplaceAllString(string(buf), "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > constants.SlugMaxLength {
		s = strings.Trim(s[:constants.SlugMaxLength], "-")
	}
	if s == "" {
		s = "template"
	}
	return s
}

// SlugWithSuffix appends a short random suffix to base, trimming base so the total fits the slug limit.
func SlugWithSuffix(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:constants.SlugSuffixLength]

	keep := constants.SlugMaxLength - constants.SlugSuffixLength - 1
	if len(base) > keep {
		base = strings.Trim(base[:keep], "-")
	}
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
