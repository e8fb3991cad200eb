package scorer

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sitefinder/internal/model"
)

var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

type scoreResponse struct {
	URLs []json.RawMessage `json:"urls"`
}

type scoreEntry struct {
	URL    any `json:"url"`
	Score  any `json:"score"`
	Reason any `json:"reason"`
}

// extractText returns the trimmed reply text, or "" for a nil completion.
func extractText(c *Completion) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text)
}

// parseResponse decodes the model's {"urls":[...]} reply. Entries without
// a string url or a numeric score are skipped; scores are clamped.
func parseResponse(raw string) ([]model.ScoredURL, error) {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return nil, eris.New("scorer: empty response")
	}

	var resp scoreResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(text)
		if rerr != nil {
			return nil, eris.Wrap(err, "scorer: decode response")
		}
		resp = scoreResponse{}
		if err := json.Unmarshal([]byte(repaired), &resp); err != nil {
			return nil, eris.Wrap(err, "scorer: decode repaired response")
		}
	}
	if resp.URLs == nil {
		return nil, eris.New("scorer: response has no urls array")
	}

	out := make([]model.ScoredURL, 0, len(resp.URLs))
	for _, rm := range resp.URLs {
		var e scoreEntry
		if err := json.Unmarshal(rm, &e); err != nil {
			continue
		}
		url, ok := e.URL.(string)
		if !ok {
			continue
		}
		score, ok := e.Score.(float64)
		if !ok {
			continue
		}
		reason, _ := e.Reason.(string)
		out = append(out, model.ScoredURL{
			URL:    url,
			Score:  model.ClampScore(score),
			Reason: reason,
		})
	}
	return out, nil
}
