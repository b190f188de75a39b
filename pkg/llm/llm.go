// Package llm defines the provider-neutral types used to talk to a
// chat-completion model. Concrete providers live under internal/llm.
package llm

import "context"

// Provider generates text from prompts.
type Provider interface {
	// Generate creates a completion from a single user prompt.
	Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error)

	// Chat creates a completion from a conversation history.
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error)
}

// CallOption configures a single Generate or Chat call.
type CallOption func(*CallConfig)

// CallConfig holds the resolved configuration for one call.
type CallConfig struct {
	Model       string
	Temperature float64
}

// WithModel overrides the provider's default model.
func WithModel(model string) CallOption {
	return func(c *CallConfig) { c.Model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) CallOption {
	return func(c *CallConfig) { c.Temperature = temp }
}

// ApplyOptions resolves opts on top of the defaults.
func ApplyOptions(opts ...CallOption) CallConfig {
	cfg := CallConfig{
		Temperature: 0.7,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
