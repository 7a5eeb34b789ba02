package generator

import (
	"fmt"
	"strings"

	"github.com/dwai-labs/newsletter-generator/internal/models"
)

// DateLayout is the display format used in prompts, records and fragments.
const DateLayout = "January 02, 2006"

// TopicPrompt asks for a labeled article about topic.
func TopicPrompt(persona, topic, date string, words int) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Today's date is %s.\n\n", date)
	fmt.Fprintf(&sb, "Write an original newsletter article of about %d words for IT and business professionals on the topic:\n%s\n\n", words, topic)
	sb.WriteString("Write in a warm, expert, and analytical tone with practical takeaways. ")
	sb.WriteString("Use flowing paragraphs, no markdown headings and no bullet points.\n\n")
	sb.WriteString("Respond using exactly this structure, each label at the start of its own line:\n")
	sb.WriteString("TITLE: <a compelling headline>\n")
	sb.WriteString("CATEGORY: <a short human-readable category label>\n")
	fmt.Fprintf(&sb, "CATEGORY_KEY: <one of: %s>\n", strings.Join(models.CategoryKeys, ", "))
	sb.WriteString("EXCERPT: <one or two sentences summarising the article>\n")
	sb.WriteString("BODY:\n<the full article text>\n")
	return sb.String()
}

// AnalysisPrompt asks for a short analysis of a fetched feed entry.
func AnalysisPrompt(persona string, article models.RawArticle) string {
	return fmt.Sprintf(`%s

Analyze this news article and write a 200-word newsletter piece for professionals.
Structure it as:
1. What happened (1-2 sentences)
2. The Opportunity: Why this is exciting for digital workplaces
3. The Challenge: Key risks or hurdles organizations must watch
4. Your Take: A brief personal insight in first-person

Write in a warm, expert, and analytical tone. No bullet points, flowing paragraphs only.

Article Title: %s
Article Summary: %s
`, persona, article.Title, article.Summary)
}
