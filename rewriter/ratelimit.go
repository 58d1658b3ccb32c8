package rewriter

import "strings"

const DefaultRateLimitMarker = "rate limit"

// IsRateLimit reports whether err's message contains marker, ignoring case.
// The match is a plain substring: "rate-limited" does not contain "rate limit".
func IsRateLimit(err error, marker string) bool {
	if err == nil || marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(marker))
}
