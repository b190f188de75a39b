package llm

import "errors"

// Error codes. Providers map their native failures onto these.
const (
	ErrCodeAuthentication = "authentication_error"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeModelNotFound  = "model_not_found"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeContextLength  = "context_length_exceeded"
	ErrCodeServerError    = "server_error"
	ErrCodeTimeout        = "timeout"
	ErrCodeEmptyResponse  = "empty_response"
)

// ProviderError is a classified provider failure.
type ProviderError struct {
	Err     error
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a typed provider error.
func NewProviderError(code, message string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: message, Err: err}
}

// IsAuthenticationError reports whether err is an authentication failure.
func IsAuthenticationError(err error) bool {
	return hasCode(err, ErrCodeAuthentication)
}

// IsRateLimitError reports whether err is a rate-limit error.
func IsRateLimitError(err error) bool {
	return hasCode(err, ErrCodeRateLimit)
}

// IsServerError reports whether err is a provider-side failure.
func IsServerError(err error) bool {
	return hasCode(err, ErrCodeServerError)
}

// IsTimeoutError reports whether err is a timeout or cancellation.
func IsTimeoutError(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

// IsRetryable reports whether a repeated call may succeed.
func IsRetryable(err error) bool {
	return IsRateLimitError(err) || IsServerError(err) || IsTimeoutError(err)
}

// Code returns the error code of err, or "" when err is not a ProviderError.
func Code(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}

	return ""
}

func hasCode(err error, code string) bool {
	return Code(err) == code
}
