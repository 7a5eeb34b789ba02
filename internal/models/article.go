package models

import "time"

// Category keys used for client-side filtering.
const (
	CategoryCopilot    = "copilot"
	CategoryAI         = "ai"
	CategoryRPA        = "rpa"
	CategoryEnterprise = "enterprise"
)

// CategoryKeys is the fixed enumeration of valid category keys.
var CategoryKeys = []string{CategoryCopilot, CategoryAI, CategoryRPA, CategoryEnterprise}

// ValidCategoryKey reports whether key belongs to CategoryKeys.
func ValidCategoryKey(key string) bool {
	for _, k := range CategoryKeys {
		if k == key {
			return true
		}
	}
	return false
}

// RawArticle is a feed entry considered for analysis.
type RawArticle struct {
	Title   string
	Summary string
	Link    string
	Source  string
}

// GeneratedArticle is the parsed output of one generation call.
type GeneratedArticle struct {
	Title       string
	Category    string
	CategoryKey string
	Excerpt     string
	Body        string

	// Set only for articles analysed from a feed entry.
	Source string
	Link   string
}

// ArticleRecord is the canonical structure stored in Elasticsearch.
type ArticleRecord struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	CategoryKey string     `json:"category_key"`
	Excerpt     string     `json:"excerpt"`
	Body        string     `json:"body"`
	Date        string     `json:"date"`
	Source      string     `json:"source,omitempty"`
	Link        string     `json:"link,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// NewRecord builds the record persisted for a generated article.
func NewRecord(a GeneratedArticle, date string) ArticleRecord {
	return ArticleRecord{
		Title:       a.Title,
		Category:    a.Category,
		CategoryKey: a.CategoryKey,
		Excerpt:     a.Excerpt,
		Body:        a.Body,
		Date:        date,
		Source:      a.Source,
		Link:        a.Link,
	}
}
