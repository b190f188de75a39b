// Package utils provides common utility functions.
package utils

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "madison-agent/1.0"

// secretParams are query parameters hidden from logs.
var secretParams = []string{"apiKey", "apikey", "api_key", "key", "token"}

// HTTPHelper provides HTTP utility functions.
type HTTPHelper struct {
	userAgent string
}

// NewHTTPHelper creates a new HTTP helper.
func NewHTTPHelper(userAgent string) *HTTPHelper {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &HTTPHelper{userAgent: userAgent}
}

// IsValidURL checks if a URL is an absolute http(s) URL.
func (h *HTTPHelper) IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates HTTP headers with defaults.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	// Add default headers
	headers.Set("User-Agent", h.userAgent)
	headers.Set("Accept", "application/json, application/rss+xml, application/xml;q=0.9, text/csv, */*;q=0.8")

	// Custom headers replace defaults
	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}

// RedactURL masks secret query parameters so URLs can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}

	q := u.Query()
	changed := false

	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")

			changed = true
		}
	}

	if !changed {
		return raw
	}

	u.RawQuery = q.Encode()

	return strings.ReplaceAll(u.String(), "REDACTED", "***")
}
