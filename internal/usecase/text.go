package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugInvalid  = regexp.MustCompile(`[^a-z0-9_\-]+`)
	slugDashRuns = regexp.MustCompile(`-{2,}`)
)

// GenerateSlug lowercases s, turns whitespace into dashes and strips
// everything that is not a word character or dash.
func GenerateSlug(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugDashRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Truncate cuts s to n runes and appends "..." when anything was removed.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// ParseTags splits a comma separated list, dropping blanks.
func ParseTags(s string) []string {
	tags := []string{}
	for t := range strings.SplitSeq(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
