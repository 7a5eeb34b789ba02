package render_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/dwai-labs/newsletter-generator/internal/models"
	"github.com/dwai-labs/newsletter-generator/internal/render"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New("Jane Doe", []string{"🤖", "🚀"}, []string{"linear-gradient(135deg, #111 0%, #222 100%)", "red", "blue"})
	require.NoError(t, err)
	return r
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFragmentPersisted(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Fragment(0, render.Item{
		ID: "doc-42",
		Article: models.GeneratedArticle{
			Title:       "Using <T> generics & List<int>",
			Category:    "AI & ML",
			CategoryKey: "ai",
			Excerpt:     "Short & sweet.",
		},
	}, "March 05, 2025")
	require.NoError(t, err)

	doc := parse(t, out)
	card := doc.Find("article.article-card")
	require.Equal(t, 1, card.Length())

	cat, _ := card.Attr("data-category")
	require.Equal(t, "ai", cat)

	style, _ := card.Find(".article-image").Attr("style")
	require.Equal(t, "background: linear-gradient(135deg, #111 0%, #222 100%);", style)

	require.Equal(t, "🤖", card.Find(".article-emoji").Text())
	require.Equal(t, "AI & ML", card.Find(".article-category").Text())
	require.Equal(t, "March 05, 2025", card.Find(".article-date").Text())
	require.Equal(t, "Using <T> generics & List<int>", card.Find(".article-title").Text())
	require.Equal(t, "Short & sweet.", card.Find(".article-excerpt").Text())
	require.Equal(t, "By Jane Doe", card.Find(".article-author").Text())

	onclick, ok := card.Find("a.read-more").Attr("onclick")
	require.True(t, ok)
	require.Equal(t, `openArticle("doc-42"); return false;`, onclick)
}

func TestFragmentFeedArticle(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Fragment(1, render.Item{
		Article: models.GeneratedArticle{
			Title:   "Copilot arrives in Excel",
			Excerpt: "Analysis...",
			Source:  "Tech Daily",
			Link:    "https://example.com/1",
		},
	}, "March 05, 2025")
	require.NoError(t, err)

	card := parse(t, out).Find("article")
	require.Equal(t, "🚀", card.Find(".article-emoji").Text())
	require.Equal(t, "Source: Tech Daily | Analysis by Jane Doe", card.Find(".article-author").Text())

	link := card.Find("a.read-more")
	href, _ := link.Attr("href")
	require.Equal(t, "https://example.com/1", href)
	_, hasOnclick := link.Attr("onclick")
	require.False(t, hasOnclick)
}

func TestFragmentsRoundRobinInOrder(t *testing.T) {
	r := newRenderer(t)
	items := []render.Item{
		{ID: "a", Article: models.GeneratedArticle{Title: "first"}},
		{ID: "b", Article: models.GeneratedArticle{Title: "second"}},
		{ID: "c", Article: models.GeneratedArticle{Title: "third"}},
	}

	out, err := r.Fragments(items, "March 05, 2025")
	require.NoError(t, err)

	cards := parse(t, out).Find("article")
	require.Equal(t, 3, cards.Length())

	var titles, emojis, styles []string
	cards.Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Find(".article-title").Text())
		emojis = append(emojis, s.Find(".article-emoji").Text())
		style, _ := s.Find(".article-image").Attr("style")
		styles = append(styles, style)
	})

	require.Equal(t, []string{"first", "second", "third"}, titles)
	require.Equal(t, []string{"🤖", "🚀", "🤖"}, emojis)
	require.Equal(t, "background: red;", styles[1])
	require.Equal(t, "background: blue;", styles[2])
}

func TestFragmentEscapesScript(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Fragment(0, render.Item{
		ID:      `x");alert(1);("`,
		Article: models.GeneratedArticle{Title: "<script>alert(1)</script>Safe"},
	}, "d")
	require.NoError(t, err)
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;Safe")
}

func TestNewRequiresDecorations(t *testing.T) {
	_, err := render.New("a", nil, []string{"red"})
	require.Error(t, err)
}
