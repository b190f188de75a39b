package openai

import (
	"time"

	"madison/internal/config"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.openai.com"

// Config holds the OpenAI provider configuration.
type Config struct {
	Model   string
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the defaults used by the agent.
func DefaultConfig() Config {
	return Config{
		Model:   "gpt-4o-mini",
		BaseURL: DefaultBaseURL,
		Timeout: 2 * time.Minute,
	}
}

// FromNarrative builds a provider config from the agent's narrative section,
// keeping defaults for unset fields.
func FromNarrative(n config.NarrativeConfig) Config {
	cfg := DefaultConfig()

	if n.Model != "" {
		cfg.Model = n.Model
	}

	if n.BaseURL != "" {
		cfg.BaseURL = n.BaseURL
	}

	if n.TimeoutSec > 0 {
		cfg.Timeout = n.Timeout()
	}

	return cfg
}
