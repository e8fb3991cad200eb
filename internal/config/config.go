// Package config loads sitefinder settings from config.yaml, .env, and the
// environment, and initialises the global logger.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/sitefinder/internal/cost"
)

// Provider names accepted in search.providers.
const (
	ProviderGoogle      = "google"
	ProviderBrave       = "brave"
	ProviderScrapingDog = "scrapingdog"
	ProviderJina        = "jina"
)

// Scorer backends accepted in scorer.backend.
const (
	BackendGemini    = "gemini"
	BackendAnthropic = "anthropic"
)

// KnownProviders lists every search provider that can be configured.
var KnownProviders = []string{ProviderGoogle, ProviderBrave, ProviderScrapingDog, ProviderJina}

// Config holds the full application configuration.
type Config struct {
	Google      GoogleConfig      `yaml:"google" mapstructure:"google"`
	Brave       BraveConfig       `yaml:"brave" mapstructure:"brave"`
	ScrapingDog ScrapingDogConfig `yaml:"scrapingdog" mapstructure:"scrapingdog"`
	Jina        JinaConfig        `yaml:"jina" mapstructure:"jina"`
	Gemini      GeminiConfig      `yaml:"gemini" mapstructure:"gemini"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Scorer      ScorerConfig      `yaml:"scorer" mapstructure:"scorer"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	Pricing     cost.Rates        `yaml:"pricing" mapstructure:"pricing"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// GoogleConfig configures the Custom Search JSON API.
type GoogleConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	CSEID       string `yaml:"cse_id" mapstructure:"cse_id"`
	ResultCount int    `yaml:"result_count" mapstructure:"result_count"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
}

// BraveConfig configures Brave Web Search.
type BraveConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	ResultCount int    `yaml:"result_count" mapstructure:"result_count"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
}

// ScrapingDogConfig configures the Scrapingdog Google SERP API.
type ScrapingDogConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	ResultCount int    `yaml:"result_count" mapstructure:"result_count"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig configures Jina AI Search.
type JinaConfig struct {
	APIKey        string `yaml:"api_key" mapstructure:"api_key"`
	ResultCount   int    `yaml:"result_count" mapstructure:"result_count"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// GeminiConfig configures the default scorer backend.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig configures the alternate scorer backend.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
}

// SearchConfig configures query shape and provider order.
type SearchConfig struct {
	Providers   []string `yaml:"providers" mapstructure:"providers"`
	QuerySuffix string   `yaml:"query_suffix" mapstructure:"query_suffix"`
	Language    string   `yaml:"language" mapstructure:"language"`
	Country     string   `yaml:"country" mapstructure:"country"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FetchConfig configures candidate page downloads.
type FetchConfig struct {
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyBytes  int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RateLimitRPS  float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// ScorerConfig selects and bounds the relevance scorer.
type ScorerConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PipelineConfig configures the provider fallback.
type PipelineConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envAliases maps config keys to the bare environment variable names the
// tool has always accepted, alongside the SITEFINDER_ prefixed form.
var envAliases = map[string]string{
	"google.api_key":           "GOOGLE_API_KEY",
	"google.cse_id":            "GOOGLE_CSE_ID",
	"google.result_count":      "GOOGLE_SEARCH_RESULT_COUNT",
	"brave.api_key":            "BRAVE_API_KEY",
	"brave.result_count":       "BRAVE_SEARCH_RESULT_COUNT",
	"scrapingdog.api_key":      "SCRAPINGDOG_API_KEY",
	"scrapingdog.result_count": "SCRAPINGDOG_SEARCH_RESULT_COUNT",
	"jina.api_key":             "JINA_API_KEY",
	"jina.result_count":        "JINA_SEARCH_RESULT_COUNT",
	"gemini.api_key":           "GEMINI_API_KEY",
	"gemini.model":             "GEMINI_MODEL",
	"anthropic.key":            "ANTHROPIC_API_KEY",
	"log.level":                "LOG_LEVEL",
}

const envPrefix = "SITEFINDER"

// Load reads configuration from .env, config.yaml, and the environment.
// Prefixed variables win over bare ones.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, bare := range envAliases {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, bare); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("google.result_count", 10)
	v.SetDefault("google.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("brave.result_count", 10)
	v.SetDefault("brave.base_url", "https://api.search.brave.com/res/v1")
	v.SetDefault("scrapingdog.result_count", 10)
	v.SetDefault("scrapingdog.base_url", "https://api.scrapingdog.com")
	v.SetDefault("jina.result_count", 10)
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("gemini.model", "gemini-2.5-pro")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("search.providers", []string{ProviderGoogle, ProviderBrave, ProviderScrapingDog})
	v.SetDefault("search.query_suffix", "会社概要")
	v.SetDefault("search.language", "ja")
	v.SetDefault("search.country", "jp")
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_body_bytes", 512*1024)
	v.SetDefault("fetch.max_concurrent", 10)
	v.SetDefault("fetch.rate_limit_rps", 0)
	v.SetDefault("scorer.backend", BackendGemini)
	v.SetDefault("scorer.timeout_secs", 60)
	v.SetDefault("pipeline.confidence_threshold", 0.7)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.normalize()

	return &cfg, nil
}

func (c *Config) normalize() {
	providers := make([]string, 0, len(c.Search.Providers))
	for _, p := range c.Search.Providers {
		for _, part := range strings.Split(p, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				providers = append(providers, part)
			}
		}
	}
	c.Search.Providers = providers
	c.Scorer.Backend = strings.ToLower(strings.TrimSpace(c.Scorer.Backend))
}

// Validate reports every missing credential and out-of-range setting in a
// single error.
func (c *Config) Validate() error {
	var problems []string
	missing := func(name string) {
		problems = append(problems, fmt.Sprintf("missing %s", name))
	}

	if len(c.Search.Providers) == 0 {
		problems = append(problems, "search.providers is empty")
	}
	seen := make(map[string]bool, len(c.Search.Providers))
	for _, p := range c.Search.Providers {
		if seen[p] {
			problems = append(problems, fmt.Sprintf("search provider %q listed twice", p))
			continue
		}
		seen[p] = true

		switch p {
		case ProviderGoogle:
			if c.Google.APIKey == "" {
				missing("GOOGLE_API_KEY")
			}
			if c.Google.CSEID == "" {
				missing("GOOGLE_CSE_ID")
			}
		case ProviderBrave:
			if c.Brave.APIKey == "" {
				missing("BRAVE_API_KEY")
			}
		case ProviderScrapingDog:
			if c.ScrapingDog.APIKey == "" {
				missing("SCRAPINGDOG_API_KEY")
			}
		case ProviderJina:
			if c.Jina.APIKey == "" {
				missing("JINA_API_KEY")
			}
		default:
			problems = append(problems, fmt.Sprintf("unknown search provider %q (known: %s)", p, strings.Join(KnownProviders, ", ")))
		}
	}

	switch c.Scorer.Backend {
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			missing("GEMINI_API_KEY")
		}
		if c.Gemini.Model == "" {
			missing("GEMINI_MODEL")
		}
	case BackendAnthropic:
		if c.Anthropic.Key == "" {
			missing("ANTHROPIC_API_KEY")
		}
		if c.Anthropic.Model == "" {
			missing("anthropic.model")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown scorer backend %q", c.Scorer.Backend))
	}

	if t := c.Pipeline.ConfidenceThreshold; t < 0 || t > 1 {
		problems = append(problems, fmt.Sprintf("pipeline.confidence_threshold %v outside [0,1]", t))
	}
	if c.Fetch.MaxConcurrent < 0 {
		problems = append(problems, "fetch.max_concurrent must not be negative")
	}
	if c.Fetch.RateLimitRPS < 0 {
		problems = append(problems, "fetch.rate_limit_rps must not be negative")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	// Results go to stdout; keep logs off it.
	zapCfg.OutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
