package processing

import (
	"regexp"
	"strings"

	"github.com/dwai-labs/newsletter-generator/internal/models"
)

var (
	titleRe       = lineLabel("TITLE")
	categoryRe    = lineLabel("CATEGORY")
	categoryKeyRe = lineLabel("CATEGORY_KEY")
	excerptRe     = lineLabel("EXCERPT")
)

// Body runs to the end of the text.
var bodyRe = regexp.MustCompile(`(?s)\bBODY:[\s*]*(.+)`)

// DefaultArticle holds the fallback value of every parsed field.
var DefaultArticle = models.GeneratedArticle{
	Title:       "AI & Workplace Insights",
	Category:    "AI & ML",
	CategoryKey: models.CategoryAI,
	Excerpt:     "",
	Body:        "",
}

// Fields is the raw extraction result. A nil field was not found.
type Fields struct {
	Title       *string
	Category    *string
	CategoryKey *string
	Excerpt     *string
	Body        *string
}

// ExtractFields pulls the labeled fields out of a model response. It never
// fails: anything it cannot find is left nil.
func ExtractFields(text string) Fields {
	return Fields{
		Title:       firstMatch(titleRe, text),
		Category:    firstMatch(categoryRe, text),
		CategoryKey: firstMatch(categoryKeyRe, text),
		Excerpt:     firstMatch(excerptRe, text),
		Body:        firstMatch(bodyRe, text),
	}
}

// Merge fills every missing field from defaults.
func (f Fields) Merge(defaults models.GeneratedArticle) models.GeneratedArticle {
	out := defaults
	if f.Title != nil {
		out.Title = *f.Title
	}
	if f.Category != nil {
		out.Category = *f.Category
	}
	if f.CategoryKey != nil {
		out.CategoryKey = *f.CategoryKey
	}
	if f.Excerpt != nil {
		out.Excerpt = *f.Excerpt
	}
	if f.Body != nil {
		out.Body = *f.Body
	}
	return out
}

// ParseArticle extracts the fields of text, merges them with DefaultArticle
// and normalizes the category key.
func ParseArticle(text string) models.GeneratedArticle {
	a := ExtractFields(text).Merge(DefaultArticle)
	a.CategoryKey = NormalizeCategoryKey(a.CategoryKey)
	return a
}

// NormalizeCategoryKey lowercases key and maps anything outside the
// enumeration to the default key.
func NormalizeCategoryKey(key string) string {
	k := strings.ToLower(strings.Trim(strings.TrimSpace(key), "`*\"'"))
	if models.ValidCategoryKey(k) {
		return k
	}
	return DefaultArticle.CategoryKey
}

// lineLabel matches "LABEL: value" anywhere in the text. The value is the
// rest of the first non-blank line after the colon; bold markers between the
// colon and the value are skipped.
func lineLabel(label string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + label + `:[\s*]*(.+)`)
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}
