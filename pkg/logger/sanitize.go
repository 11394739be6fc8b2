package logger

import (
	"log/slog"
	"strings"
)

// SanitizedAccount masks an account handle for logging (e.g., "a****6").
// Login failures log the submitted handle; masking keeps it out of log
// aggregation in recognizable form.
func SanitizedAccount(account string) string {
	if account == "" {
		return "[empty-account]"
	}
	if len(account) <= 2 {
		return strings.Repeat("*", len(account))
	}
	return string(account[0]) + strings.Repeat("*", len(account)-2) + string(account[len(account)-1])
}

// RedactedAttr returns a redacted slog attribute for sensitive values
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// SanitizeQueryString checks if query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := map[string]bool{
		"password": true,
		"token":    true,
		"secret":   true,
		"session":  true,
		"auth":     true,
	}

	query := strings.ToLower(rawQuery)
	for param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
