// Package cost attributes USD spend to scorer model calls and search queries.
package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Models map[string]ModelRate `yaml:"models" mapstructure:"models"`
	Search map[string]float64   `yaml:"search" mapstructure:"search"` // provider → USD per query
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates. Models and
// providers missing from rates fall back to DefaultRates.
func NewCalculator(rates Rates) *Calculator {
	def := DefaultRates()
	merged := Rates{
		Models: make(map[string]ModelRate, len(def.Models)+len(rates.Models)),
		Search: make(map[string]float64, len(def.Search)+len(rates.Search)),
	}
	for k, v := range def.Models {
		merged.Models[k] = v
	}
	for k, v := range rates.Models {
		merged.Models[k] = v
	}
	for k, v := range def.Search {
		merged.Search[k] = v
	}
	for k, v := range rates.Search {
		merged.Search[k] = v
	}
	return &Calculator{rates: merged}
}

// Tokens computes the cost of a single model call. Unknown models cost 0.
func (c *Calculator) Tokens(model string, input, output int64) float64 {
	if c == nil {
		return 0
	}
	rate, ok := c.rates.Models[model]
	if !ok {
		return 0
	}
	inCost := (float64(input) / 1e6) * rate.Input
	outCost := (float64(output) / 1e6) * rate.Output
	return inCost + outCost
}

// SearchQuery returns the flat cost of one query against provider.
func (c *Calculator) SearchQuery(provider string) float64 {
	if c == nil {
		return 0
	}
	return c.rates.Search[provider]
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Models: map[string]ModelRate{
			"gemini-2.5-pro":             {Input: 1.25, Output: 10.00},
			"gemini-2.5-flash":           {Input: 0.30, Output: 2.50},
			"gemini-1.5-pro-latest":      {Input: 1.25, Output: 5.00},
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		Search: map[string]float64{
			"google":      0.005,
			"brave":       0.005,
			"scrapingdog": 0.001,
			"jina":        0,
		},
	}
}
