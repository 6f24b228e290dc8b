package mail

import (
	"strings"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

// Classify maps a provider error message to an error type and whether a
// later retry makes sense. Matching is by known substrings in the provider
// text, so unknown providers still classify reasonably.
func Classify(errText string) (errorType string, retryable bool) {
	s := strings.ToLower(errText)

	switch {
	case strings.Contains(s, "quota"):
		return entity.ErrorTypeQuotaExceeded, true
	case strings.Contains(s, "rate limit"),
		strings.Contains(s, "sending limit"),
		strings.Contains(s, "too many"),
		strings.Contains(s, "throttl"),
		strings.Contains(s, "429"):
		return entity.ErrorTypeRateLimit, true
	case strings.Contains(s, "unauthorized"),
		strings.Contains(s, "authentication"),
		strings.Contains(s, "invalid api key"),
		strings.Contains(s, "credential"),
		strings.Contains(s, "401"),
		strings.Contains(s, "535"):
		// retryable only after the operator fixes the configuration
		return entity.ErrorTypeAuthentication, false
	case strings.Contains(s, "timeout"),
		strings.Contains(s, "deadline exceeded"),
		strings.Contains(s, "connection refused"),
		strings.Contains(s, "no such host"):
		return entity.ErrorTypeTimeout, true
	default:
		// prefer retrying over silently dropping
		return entity.ErrorTypeOther, true
	}
}
