package scorer

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/sells-group/sitefinder/internal/model"
)

const previewRunes = 1000

func buildPrompt(company model.Company, pages []model.Page) string {
	var b strings.Builder

	b.WriteString("You are evaluating candidate company websites. Return ONLY a raw JSON object (no markdown, no code blocks, no backticks).\n\n")
	b.WriteString("The JSON must have a single property \"urls\" that is an array of objects with this exact shape:\n")
	b.WriteString(`{"url": string, "score": number between 0 and 1, "reason": string}` + "\n\n")

	b.WriteString("Company name: " + company.Name + "\n")
	if company.HasAddress() {
		b.WriteString("Address: " + company.Address + "\n")
	} else {
		b.WriteString("Address: Not provided\n")
	}
	if company.HasDescription() {
		b.WriteString("Description: " + company.Description + "\n")
	} else {
		b.WriteString("Description: Not provided\n")
	}

	b.WriteString("\nCandidate pages:\n")
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		snippet := p.Snippet
		if strings.TrimSpace(snippet) == "" {
			snippet = "N/A"
		}
		b.WriteString("URL: " + p.URL + "\n")
		b.WriteString("Title: " + p.Title + "\n")
		b.WriteString("Snippet: " + snippet + "\n")
		b.WriteString("Content Preview: " + preview(p.Content))
	}

	b.WriteString("\n\nBase the score on how well the page seems to represent the official website for the company. Higher is better. ")
	b.WriteString("Always return scores for every provided URL. Return ONLY the JSON object, nothing else.")
	return b.String()
}

// preview converts an HTML body to markdown and keeps the first
// previewRunes runes. Bodies that fail to convert are used as-is.
func preview(content string) string {
	if content == "" {
		return ""
	}
	text := content
	if looksLikeHTML(content) {
		if md, err := htmltomarkdown.ConvertString(content); err == nil {
			text = md
		}
	}
	text = strings.TrimSpace(text)

	n := 0
	for i := range text {
		if n == previewRunes {
			return text[:i]
		}
		n++
	}
	return text
}

func looksLikeHTML(s string) bool {
	head := s
	if len(head) > 512 {
		head = head[:512]
	}
	head = strings.ToLower(head)
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype") ||
		strings.Contains(head, "<body") || strings.Contains(head, "<div") || strings.Contains(head, "<p")
}
