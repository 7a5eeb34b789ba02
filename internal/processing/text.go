package processing

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var whitespace = regexp.MustCompile(`\s+`)

var strict = bluemonday.StrictPolicy()

// StripMarkup removes all HTML tags, decodes entities and squeezes whitespace.
func StripMarkup(input string) string {
	if input == "" {
		return ""
	}
	cleaned := html.UnescapeString(strict.Sanitize(input))
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Truncate shortens text to at most limit runes, breaking on the last whole
// word and appending "...". Text within the limit is returned unchanged.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}

	cut := string(runes[:limit])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \t\n") + "..."
}

// MatchesKeywords reports whether text contains any keyword, case-insensitively.
func MatchesKeywords(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
