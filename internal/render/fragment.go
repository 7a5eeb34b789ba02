package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dwai-labs/newsletter-generator/internal/models"
)

const fragmentHTML = `
                <article class="article-card newsletter-card" data-category="{{.CategoryKey}}">
                    <div class="article-image" style="background: {{.Gradient}};">
                        <span class="article-emoji">{{.Emoji}}</span>
                    </div>
                    <div class="article-content">
                        <div class="article-meta newsletter-card-header">
                            <span class="article-category newsletter-badge">{{.Category}}</span>
                            <span class="article-date newsletter-date">{{.Date}}</span>
                        </div>
                        <h3 class="article-title">{{.Title}}</h3>
                        <p class="article-excerpt">{{.Excerpt}}</p>
                        <div class="article-footer newsletter-meta">
{{- if .Source}}
                            <span class="article-author">Source: {{.Source}} | Analysis by {{.Author}}</span>
{{- else}}
                            <span class="article-author">By {{.Author}}</span>
{{- end}}
{{- if .ID}}
                            <a href="#" class="read-more" onclick="openArticle({{.ID}}); return false;">Read More →</a>
{{- else if .Link}}
                            <a href="{{.Link}}" target="_blank" rel="noopener" class="read-more">Read Full Analysis →</a>
{{- end}}
                        </div>
                    </div>
                </article>`

var fragmentTmpl = template.Must(template.New("fragment").Parse(fragmentHTML))

// Item is one article to render. ID is the persisted document id, if any.
type Item struct {
	Article models.GeneratedArticle
	ID      string
}

// Renderer turns articles into HTML fragments.
type Renderer struct {
	author    string
	emojis    []string
	gradients []string
}

// New creates a Renderer. emojis and gradients must not be empty.
func New(author string, emojis, gradients []string) (*Renderer, error) {
	if len(emojis) == 0 || len(gradients) == 0 {
		return nil, fmt.Errorf("render: emojis and gradients are required")
	}
	return &Renderer{author: author, emojis: emojis, gradients: gradients}, nil
}

type fragmentData struct {
	ID          string
	CategoryKey string
	Gradient    template.CSS
	Emoji       string
	Category    string
	Date        string
	Title       string
	Excerpt     string
	Author      string
	Source      string
	Link        string
}

// Fragment renders the article at position index. Decoration is picked
// round-robin by index, independent of the content.
func (r *Renderer) Fragment(index int, item Item, date string) (string, error) {
	a := item.Article
	data := fragmentData{
		ID:          item.ID,
		CategoryKey: a.CategoryKey,
		// Gradients come from trusted configuration.
		Gradient: template.CSS(r.gradients[index%len(r.gradients)]),
		Emoji:    r.emojis[index%len(r.emojis)],
		Category: a.Category,
		Date:     date,
		Title:    a.Title,
		Excerpt:  a.Excerpt,
		Author:   r.author,
		Source:   a.Source,
		Link:     a.Link,
	}

	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render fragment: %w", err)
	}
	return buf.String(), nil
}

// Fragments renders items in order and concatenates the result.
func (r *Renderer) Fragments(items []Item, date string) (string, error) {
	var sb strings.Builder
	for i, item := range items {
		frag, err := r.Fragment(i, item, date)
		if err != nil {
			return "", err
		}
		sb.WriteString(frag)
	}
	return sb.String(), nil
}
