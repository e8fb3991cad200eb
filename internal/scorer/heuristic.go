package scorer

import (
	"strings"

	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/internal/sanitize"
)

const heuristicReason = "Heuristic fallback score due to parsing error."

// heuristic scores pages from surface signals: the name in the URL, the
// name in the snippet, and the address in the page body.
func heuristic(company model.Company, pages []model.Page) []model.ScoredURL {
	nameKey := sanitize.NameKey(company.Name)
	name := strings.ToLower(strings.TrimSpace(company.Name))
	address := strings.ToLower(strings.TrimSpace(company.Address))

	out := make([]model.ScoredURL, len(pages))
	for i, p := range pages {
		score := 0.2
		// An empty key (no ASCII letters or digits) matches every URL.
		if strings.Contains(strings.ToLower(p.URL), nameKey) {
			score += 0.5
		}
		if name != "" && strings.Contains(strings.ToLower(p.Snippet), name) {
			score += 0.2
		}
		if address != "" && strings.Contains(strings.ToLower(p.Content), address) {
			score += 0.1
		}
		out[i] = model.ScoredURL{
			URL:    p.URL,
			Score:  model.ClampScore(min(score, 1.0)),
			Reason: heuristicReason,
		}
	}
	return out
}
