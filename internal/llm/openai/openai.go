// Package openai implements llm.Provider on the chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"madison/internal/logger"
	"madison/pkg/llm"
)

// ErrMissingAPIKey is returned by New without a key.
var ErrMissingAPIKey = errors.New("openai: api key is required")

var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider for OpenAI-compatible endpoints.
type Provider struct {
	httpClient *http.Client
	log        *logger.Logger
	apiKey     string
	cfg        Config
}

// New creates an OpenAI provider.
func New(cfg Config, apiKey string, log *logger.Logger) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if log == nil {
		log = logger.Nop()
	}

	return &Provider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        log,
	}, nil
}

// Generate creates a completion from a single prompt.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Chat creates a completion from a conversation history.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "messages must not be empty", nil)
	}

	cfg := llm.ApplyOptions(opts...)

	model := cfg.Model
	if model == "" {
		model = p.cfg.Model
	}

	apiMessages := make([]chatMessage, len(messages))
	for i, m := range messages {
		apiMessages[i] = chatMessage(m)
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    apiMessages,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, mapError(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, mapError(parseStatusError(resp))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, llm.NewProviderError(llm.ErrCodeServerError, "decode chat response", err)
	}

	if len(out.Choices) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeEmptyResponse, "response has no choices", nil)
	}

	p.log.Debug("chat completion",
		"model", out.Model,
		"prompt_tokens", out.Usage.PromptTokens,
		"completion_tokens", out.Usage.CompletionTokens,
	)

	return &llm.Response{
		Content: out.Choices[0].Message.Content,
		Model:   out.Model,
		Usage: llm.Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}

// --- REST API types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
