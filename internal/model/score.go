package model

// ScoredURL is a relevance score in [0,1] for one candidate URL.
type ScoredURL struct {
	URL    string  `json:"url" yaml:"url"`
	Score  float64 `json:"score" yaml:"score"`
	Reason string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Outcome is the winning candidate across all providers tried, with the
// name of the provider that produced it.
type Outcome struct {
	ScoredURL `yaml:",inline"`
	Provider  string `json:"provider" yaml:"provider"`
}

// ClampScore bounds s to [0,1].
func ClampScore(s float64) float64 {
	switch {
	case s != s: // NaN
		return 0
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}
