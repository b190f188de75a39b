package utils

import (
	"strings"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo wörld", 4, "héll"},
		{"火災時間線", 2, "火災"},
		{"abc", 0, ""},
		{"", 3, ""},
	}

	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestStringHelper_NormalizeWhitespace(t *testing.T) {
	s := NewStringHelper()

	if got := s.NormalizeWhitespace("  a \n\t b  c "); got != "a b c" {
		t.Errorf("got %q", got)
	}
}

func TestHTTPHelper_BuildHeaders(t *testing.T) {
	h := NewHTTPHelper("")

	headers := h.BuildHeaders(map[string]string{"Authorization": "Bearer x", "Accept": "text/csv"})

	if headers.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("User-Agent = %q", headers.Get("User-Agent"))
	}

	if headers.Get("Accept") != "text/csv" {
		t.Errorf("custom Accept should replace default, got %q", headers.Get("Accept"))
	}

	if headers.Get("Authorization") != "Bearer x" {
		t.Error("custom header missing")
	}
}

func TestHTTPHelper_IsValidURL(t *testing.T) {
	h := NewHTTPHelper("ua")

	valid := []string{"http://example.com", "https://newsapi.org/v2/everything?q=x"}
	invalid := []string{"", "example.com", "ftp://example.com", "/relative/path", "http://"}

	for _, u := range valid {
		if !h.IsValidURL(u) {
			t.Errorf("IsValidURL(%q) = false", u)
		}
	}

	for _, u := range invalid {
		if h.IsValidURL(u) {
			t.Errorf("IsValidURL(%q) = true", u)
		}
	}
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://newsapi.org/v2/everything?q=ai&apiKey=s3cret")

	if strings.Contains(got, "s3cret") {
		t.Errorf("secret leaked: %s", got)
	}

	if !strings.Contains(got, "q=ai") {
		t.Errorf("non-secret params dropped: %s", got)
	}

	plain := "https://techcrunch.com/feed/"
	if RedactURL(plain) != plain {
		t.Errorf("url without query changed: %s", RedactURL(plain))
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30, "30.0"},
		{34.64, "34.64"},
		{0, "0.0"},
		{-2.5, "-2.5"},
		{73.8, "73.8"},
	}

	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
