package processing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwai-labs/newsletter-generator/internal/processing"
)

const wellFormed = `TITLE:   Copilot Agents Reshape the Help Desk
CATEGORY: Microsoft Copilot
CATEGORY_KEY: copilot
EXCERPT: Service desks are quietly becoming agent desks.
BODY:
First paragraph about agents.

Second paragraph with a TITLE: mention inside the body.
`

func TestExtractFieldsWellFormed(t *testing.T) {
	f := processing.ExtractFields(wellFormed)

	require.NotNil(t, f.Title)
	require.Equal(t, "Copilot Agents Reshape the Help Desk", *f.Title)
	require.Equal(t, "Microsoft Copilot", *f.Category)
	require.Equal(t, "copilot", *f.CategoryKey)
	require.Equal(t, "Service desks are quietly becoming agent desks.", *f.Excerpt)
	require.Equal(t, "First paragraph about agents.\n\nSecond paragraph with a TITLE: mention inside the body.", *f.Body)
}

func TestExtractFieldsMarkdownLabels(t *testing.T) {
	text := "**TITLE:** RPA Meets LLMs\n## CATEGORY: Automation\n**BODY:**\nText here."
	f := processing.ExtractFields(text)

	require.Equal(t, "RPA Meets LLMs", *f.Title)
	require.Equal(t, "Automation", *f.Category)
	require.Nil(t, f.CategoryKey)
	require.Equal(t, "Text here.", *f.Body)
}

func TestParseArticleDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "prose only", input: "Sorry, I cannot help with that."},
		{name: "label without value", input: "TITLE:   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := processing.ParseArticle(tt.input)
			require.Equal(t, processing.DefaultArticle, got)
		})
	}
}

func TestParseArticlePartial(t *testing.T) {
	got := processing.ParseArticle("TITLE: Only a title\nCATEGORY_KEY: Enterprise")

	require.Equal(t, "Only a title", got.Title)
	require.Equal(t, processing.DefaultArticle.Category, got.Category)
	require.Equal(t, "enterprise", got.CategoryKey)
	require.Empty(t, got.Excerpt)
	require.Empty(t, got.Body)
}

func TestParseArticleIdempotent(t *testing.T) {
	malformed := "TITLE Missing colon\nCATEGORY_KEY: blockchain\nBODY"
	first := processing.ParseArticle(malformed)
	second := processing.ParseArticle(malformed)

	require.Equal(t, first, second)
	require.Equal(t, processing.DefaultArticle, first)
}

func TestNormalizeCategoryKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "copilot", want: "copilot"},
		{in: " RPA ", want: "rpa"},
		{in: "`enterprise`", want: "enterprise"},
		{in: "crypto", want: "ai"},
		{in: "", want: "ai"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, processing.NormalizeCategoryKey(tt.in), tt.in)
	}
}

func TestExtractFieldsFirstMatchWins(t *testing.T) {
	f := processing.ExtractFields("TITLE: first\nTITLE: second")
	require.Equal(t, "first", *f.Title)
	require.False(t, strings.Contains(*f.Title, "second"))
}

func TestExtractFieldsValueOnNextLine(t *testing.T) {
	got := processing.ParseArticle("TITLE:\nNext Line Title\nCATEGORY: AI\nBODY:\nhello")

	require.Equal(t, "Next Line Title", got.Title)
	require.Equal(t, "AI", got.Category)
	require.Equal(t, "hello", got.Body)
}

func TestExtractFieldsInlineLabel(t *testing.T) {
	got := processing.ParseArticle("Intro text. TITLE: Inline Title\nBODY: b")

	require.Equal(t, "Inline Title", got.Title)
	require.Equal(t, "b", got.Body)
}

func TestExtractFieldsLabelNeedsWordBoundary(t *testing.T) {
	f := processing.ExtractFields("SUBTITLE: not this\nCATEGORY_KEY: rpa")

	require.Nil(t, f.Title)
	require.Nil(t, f.Category)
	require.Equal(t, "rpa", *f.CategoryKey)
}
