// scrubber.go redacts sensitive data from records and page locations before
// they leave the process.

package ertrack

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ScrubberConfig controls scrubbing behavior.
type ScrubberConfig struct {
	// SensitiveKeys contains additional query parameter names to redact
	// (case-insensitive substring match).
	SensitiveKeys []string

	// MaxMessageSize is the maximum length for error messages (default: 4096).
	MaxMessageSize int

	// MaxURLSize is the maximum length for script and page URLs (default: 2048).
	MaxURLSize int

	// MaxFrames is the maximum number of stack frames kept (default: 50).
	MaxFrames int

	// ScrubMessages enables scrubbing of error messages for secrets/PII (default: true).
	ScrubMessages bool
}

// DefaultScrubberConfig returns production-safe defaults.
func DefaultScrubberConfig() ScrubberConfig {
	return ScrubberConfig{
		MaxMessageSize: 4096,
		MaxURLSize:     2048,
		MaxFrames:      50,
		ScrubMessages:  true,
	}
}

// Compiled regex patterns for message scrubbing (compiled once at package init).
// Key/value patterns need an explicit "=" or ":" so engine messages such as
// "Unexpected token 'export'" pass through unchanged.
var messageScrubPatterns = []*regexp.Regexp{
	// API keys and tokens
	regexp.MustCompile(`(?i)(api[_-]?key|token)\s*[=:]\s*['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)\bauthorization\s*[=:]\s*['"]?\w+\s+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)\bbearer\s+[\w\-\.~+/]{8,}=*`),
	regexp.MustCompile(`(?i)eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), // JWT tokens

	// Credentials
	regexp.MustCompile(`(?i)password\s*[=:]\s*['"]?[^\s'"",]+['"]?`),
	regexp.MustCompile(`(?i)secret\s*[=:]\s*['"]?[^\s'"",]+['"]?`),

	// PII
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),   // Email
	regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),           // Credit card
}

// Sensitive query parameter patterns (case-insensitive substring match)
var sensitiveKeyPatterns = []string{
	"token",
	"key",
	"secret",
	"password",
	"auth",
	"session",
	"code",
}

const redacted = "[REDACTED]"

// Scrubber redacts sensitive data from records.
type Scrubber struct {
	cfg ScrubberConfig
}

// NewScrubber creates a new scrubber with the given configuration.
func NewScrubber(cfg ScrubberConfig) *Scrubber {
	return &Scrubber{cfg: cfg}
}

// ScrubRecord returns a copy of rec with the message and script scrubbed and
// the stack truncated to MaxFrames.
func (s *Scrubber) ScrubRecord(rec Record) Record {
	rec.Message = s.ScrubMessage(rec.Message)
	rec.Script = s.ScrubURL(rec.Script)

	frames := rec.Stack
	if s.cfg.MaxFrames > 0 && len(frames) > s.cfg.MaxFrames {
		frames = frames[:s.cfg.MaxFrames]
	}
	rec.Stack = make([]Frame, len(frames))
	copy(rec.Stack, frames)
	return rec
}

// ScrubMessage scrubs sensitive patterns from an error message.
func (s *Scrubber) ScrubMessage(msg string) string {
	if !s.cfg.ScrubMessages {
		return msg
	}

	if s.cfg.MaxMessageSize > 0 && len(msg) > s.cfg.MaxMessageSize {
		msg = truncateWithMarker(msg, s.cfg.MaxMessageSize)
	}

	result := msg
	for _, pattern := range messageScrubPatterns {
		result = pattern.ReplaceAllString(result, redacted)
	}
	return result
}

// ScrubURL redacts the values of sensitive query parameters and limits the
// URL length. Fragments are kept.
func (s *Scrubber) ScrubURL(raw string) string {
	if raw == "" {
		return raw
	}

	result := raw
	if qIdx := strings.IndexByte(raw, '?'); qIdx >= 0 {
		base, query := raw[:qIdx], raw[qIdx+1:]
		fragment := ""
		if fIdx := strings.IndexByte(query, '#'); fIdx >= 0 {
			query, fragment = query[:fIdx], query[fIdx:]
		}

		pairs := strings.Split(query, "&")
		for i, pair := range pairs {
			key, _, hasValue := strings.Cut(pair, "=")
			if hasValue && s.isSensitiveKey(key) {
				pairs[i] = key + "=" + redacted
			}
		}
		result = base + "?" + strings.Join(pairs, "&") + fragment
	}

	if s.cfg.MaxURLSize > 0 && len(result) > s.cfg.MaxURLSize {
		result = truncateWithMarker(result, s.cfg.MaxURLSize)
	}
	return result
}

// isSensitiveKey checks if a query parameter name matches sensitive patterns.
func (s *Scrubber) isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	for _, pattern := range s.cfg.SensitiveKeys {
		if pattern != "" && strings.Contains(keyLower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// truncateWithMarker truncates a string and adds a truncation marker. The
// result is at most maxLen bytes and never splits a rune.
func truncateWithMarker(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	marker := "...[TRUNCATED]"
	if maxLen <= len(marker) {
		return marker[:maxLen]
	}
	return truncateRunes(s, maxLen-len(marker)) + marker
}

// truncateRunes cuts s to at most n bytes, backing off to a rune boundary.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
