// Package config provides configuration management for the transparency agent.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"madison/pkg/utils"
)

// Source types.
const (
	SourceTypeCSV     = "csv"
	SourceTypeRSS     = "rss"
	SourceTypeNewsAPI = "newsapi"
)

// Report formats.
const (
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Configuration validation errors.
var (
	ErrNoSources                = errors.New("at least one source is required")
	ErrNoEnabledSources         = errors.New("at least one source must be enabled")
	ErrUnknownSourceType        = errors.New("source type must be one of: csv, rss, newsapi")
	ErrSourceMissingURLOrFile   = errors.New("either url or file is required")
	ErrSourceMissingQuery       = errors.New("newsapi source requires a query")
	ErrSourceMissingKey         = errors.New("source key is required")
	ErrDuplicateSourceKey       = errors.New("source keys must be unique")
	ErrInvalidSampleStep        = errors.New("sample_step must not be negative")
	ErrInvalidSourceURL         = errors.New("source urls must be absolute http(s) urls")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidRate              = errors.New("fetch.rate_per_second must be non-negative")
	ErrInvalidSigma             = errors.New("analysis.sigma_multiplier must be non-negative")
	ErrUnknownProvider          = errors.New("narrative.provider must be 'openai'")
	ErrMissingOutputPath        = errors.New("output.base_path is required")
	ErrInvalidOutputFormat      = errors.New("output.formats entries must be json, html or markdown")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete agent configuration.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
	// DotEnv is an optional .env file loaded before secrets are resolved.
	DotEnv string `yaml:"dotenv"`
}

// AgentConfig contains the run settings.
type AgentConfig struct {
	Output    OutputConfig    `yaml:"output"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sources   []SourceConfig  `yaml:"sources"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Retry     RetryPolicy     `yaml:"retry"`
}

// SourceConfig describes one data source.
type SourceConfig struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
	// Key names the source in the report's data_sources map.
	Key        string   `yaml:"key"`
	Prefix     string   `yaml:"prefix"`
	URL        string   `yaml:"url"`
	File       string   `yaml:"file"`
	Query      string   `yaml:"query"`
	APIKeyEnv  string   `yaml:"api_key_env"`
	BackupURLs []string `yaml:"backup_urls"`
	SampleStep int      `yaml:"sample_step"`
	Enabled    bool     `yaml:"enabled"`
}

// IsLocalFile returns true if this source uses a local file.
func (s *SourceConfig) IsLocalFile() bool {
	return s.File != ""
}

// GetSource returns the file path if local, or URL if remote.
func (s *SourceConfig) GetSource() string {
	if s.IsLocalFile() {
		return s.File
	}

	return s.URL
}

// GetAllURLs returns all URLs (primary + backups) for a source.
func (s *SourceConfig) GetAllURLs() []string {
	urls := []string{s.URL}
	urls = append(urls, s.BackupURLs...)

	return urls
}

// APIKey resolves the source's secret from the environment.
func (s *SourceConfig) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}

	return strings.TrimSpace(os.Getenv(s.APIKeyEnv))
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// FetchConfig controls HTTP pacing and caching.
type FetchConfig struct {
	UserAgent     string  `yaml:"user_agent"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	CacheTTLSec   int     `yaml:"cache_ttl_sec"`
	BufferSizeKb  int     `yaml:"buffer_size_kb"`
}

// CacheTTL returns the fetch cache lifetime.
func (f *FetchConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSec) * time.Second
}

// AnalysisConfig holds the statistics settings.
type AnalysisConfig struct {
	SigmaMultiplier float64 `yaml:"sigma_multiplier"`
}

// NarrativeConfig configures the generative summary collaborator.
type NarrativeConfig struct {
	Provider            string  `yaml:"provider"`
	Model               string  `yaml:"model"`
	BaseURL             string  `yaml:"base_url"`
	APIKeyEnv           string  `yaml:"api_key_env"`
	TimeoutSec          int     `yaml:"timeout_sec"`
	AnalysisTemperature float64 `yaml:"analysis_temperature"`
	SummaryTemperature  float64 `yaml:"summary_temperature"`
	Enabled             bool    `yaml:"enabled"`
}

// APIKey resolves the provider secret from the environment.
func (n *NarrativeConfig) APIKey() string {
	if n.APIKeyEnv == "" {
		return ""
	}

	return strings.TrimSpace(os.Getenv(n.APIKeyEnv))
}

// Timeout returns the provider request timeout.
func (n *NarrativeConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSec) * time.Second
}

// OutputConfig defines where reports go.
type OutputConfig struct {
	BasePath        string   `yaml:"base_path"`
	MetricsTextfile string   `yaml:"metrics_textfile"`
	Formats         []string `yaml:"formats"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig mirrors the stock dashboard: the NAB CPU series, two RSS
// feeds and a NewsAPI search.
func DefaultConfig() *Config {
	return &Config{
		DotEnv: ".env",
		Agent: AgentConfig{
			Sources: []SourceConfig{
				{
					Type:       SourceTypeCSV,
					Name:       "NAB - Numenta Anomaly Benchmark",
					Key:        "kaggle_nab",
					Prefix:     "nab_cpu",
					URL:        "https://raw.githubusercontent.com/numenta/NAB/master/data/realKnownCause/cpu_utilization_asg_misconfiguration.csv",
					SampleStep: 200,
					Enabled:    true,
				},
				{
					Type:    SourceTypeRSS,
					Name:    "TechCrunch",
					Key:     "techcrunch_rss",
					Prefix:  "rss_techcrunch",
					URL:     "https://techcrunch.com/feed/",
					Enabled: true,
				},
				{
					Type:    SourceTypeRSS,
					Name:    "VentureBeat AI",
					Key:     "venturebeat_rss",
					Prefix:  "rss_venturebeat",
					URL:     "https://venturebeat.com/category/ai/feed/",
					Enabled: true,
				},
				{
					Type:      SourceTypeNewsAPI,
					Name:      "NewsAPI",
					Key:       "newsapi",
					URL:       "https://newsapi.org",
					Query:     "AI analytics metrics",
					APIKeyEnv: "NEWSAPI_KEY",
					Enabled:   true,
				},
			},
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			Fetch: FetchConfig{
				UserAgent:     "madison-agent/1.0",
				RatePerSecond: 2,
				Burst:         2,
				CacheTTLSec:   600,
				BufferSizeKb:  8192,
			},
			Analysis: AnalysisConfig{SigmaMultiplier: 1.5},
			Narrative: NarrativeConfig{
				Enabled:             true,
				Provider:            "openai",
				Model:               "gpt-4o-mini",
				BaseURL:             "https://api.openai.com",
				APIKeyEnv:           "OPENAI_API_KEY",
				TimeoutSec:          120,
				AnalysisTemperature: 0.3,
				SummaryTemperature:  0.4,
			},
			Output: OutputConfig{
				BasePath: "./reports",
				Formats:  []string{FormatJSON, FormatHTML, FormatMarkdown},
			},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
	}
}

// LoadConfig loads configuration from YAML file on top of DefaultConfig.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads the configured .env file into the process environment.
// Variables already set win; a missing file is not an error.
func (c *Config) LoadDotEnv() error {
	if c.DotEnv == "" {
		return nil
	}

	if _, err := os.Stat(c.DotEnv); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(c.DotEnv); err != nil {
		return fmt.Errorf("failed to load %s: %w", c.DotEnv, err)
	}

	return nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	a := &c.Agent

	if len(a.Sources) == 0 {
		return ErrNoSources
	}

	enabledCount := 0
	keys := make(map[string]bool, len(a.Sources))
	urls := utils.NewHTTPHelper("")

	// Disabled sources are never built, so only enabled ones are checked.
	for i, src := range a.Sources {
		if !src.Enabled {
			continue
		}

		enabledCount++

		switch src.Type {
		case SourceTypeCSV, SourceTypeRSS:
			if src.URL == "" && src.File == "" {
				return fmt.Errorf("%w: source[%d]", ErrSourceMissingURLOrFile, i)
			}
		case SourceTypeNewsAPI:
			if src.Query == "" {
				return fmt.Errorf("%w: source[%d]", ErrSourceMissingQuery, i)
			}
		default:
			return fmt.Errorf("%w: source[%d] %q", ErrUnknownSourceType, i, src.Type)
		}

		if src.File == "" {
			for _, u := range src.GetAllURLs() {
				if u != "" && !urls.IsValidURL(u) {
					return fmt.Errorf("%w: source[%d] %q", ErrInvalidSourceURL, i, u)
				}
			}
		}

		if src.Key == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingKey, i)
		}

		if keys[src.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateSourceKey, src.Key)
		}

		keys[src.Key] = true

		// Zero means the adapter default.
		if src.SampleStep < 0 {
			return fmt.Errorf("%w: source[%d]", ErrInvalidSampleStep, i)
		}
	}

	if enabledCount == 0 {
		return ErrNoEnabledSources
	}

	// Validate retry policy
	if a.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if a.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if a.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if a.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if a.Fetch.RatePerSecond < 0 {
		return ErrInvalidRate
	}

	if a.Analysis.SigmaMultiplier < 0 {
		return ErrInvalidSigma
	}

	if a.Narrative.Enabled && a.Narrative.Provider != "openai" {
		return fmt.Errorf("%w: got %q", ErrUnknownProvider, a.Narrative.Provider)
	}

	if a.Output.BasePath == "" {
		return ErrMissingOutputPath
	}

	for _, f := range a.Output.Formats {
		if f != FormatJSON && f != FormatHTML && f != FormatMarkdown {
			return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, f)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[a.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if a.Logging.Format != "" && a.Logging.Format != "text" && a.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetEnabledSources returns only enabled sources.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Agent.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// SourceByType returns the first source of the given type, or nil.
func (c *Config) SourceByType(sourceType string) *SourceConfig {
	for i := range c.Agent.Sources {
		if c.Agent.Sources[i].Type == sourceType {
			return &c.Agent.Sources[i]
		}
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d (%d enabled), Sigma: %.2f, MaxAttempts: %d, Output: %s}",
		len(c.Agent.Sources),
		len(c.GetEnabledSources()),
		c.Agent.Analysis.SigmaMultiplier,
		c.Agent.Retry.MaxAttempts,
		c.Agent.Output.BasePath,
	)
}
