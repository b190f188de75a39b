package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"madison/pkg/llm"
)

// statusError is an HTTP error response from the API.
type statusError struct {
	Type       string
	Message    string
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openai: %d %s: %s", e.StatusCode, e.Type, e.Message)
}

// mapError translates API and network errors into llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}

	var se *statusError
	if errors.As(err, &se) {
		lower := strings.ToLower(se.Message)

		switch {
		case se.StatusCode == http.StatusUnauthorized:
			return llm.NewProviderError(llm.ErrCodeAuthentication, se.Message, err)
		case se.StatusCode == http.StatusTooManyRequests:
			return llm.NewProviderError(llm.ErrCodeRateLimit, se.Message, err)
		case se.StatusCode == http.StatusNotFound && strings.Contains(lower, "model"):
			return llm.NewProviderError(llm.ErrCodeModelNotFound, se.Message, err)
		case se.Type == "context_length_exceeded" || strings.Contains(lower, "context length"):
			return llm.NewProviderError(llm.ErrCodeContextLength, se.Message, err)
		case se.StatusCode >= 500:
			return llm.NewProviderError(llm.ErrCodeServerError, se.Message, err)
		case se.StatusCode >= 400:
			return llm.NewProviderError(llm.ErrCodeInvalidRequest, se.Message, err)
		}
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "openai request failed", err)
}

// parseStatusError reads an error response body.
func parseStatusError(resp *http.Response) *statusError {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	if err := json.Unmarshal(raw, &errResp); err != nil || errResp.Error.Message == "" {
		return &statusError{StatusCode: resp.StatusCode, Type: errResp.Error.Type, Message: resp.Status}
	}

	return &statusError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
	}
}
