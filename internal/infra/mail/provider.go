package mail

import (
	"context"
	"fmt"
	"strings"
)

// Provider is one outbound email service. The gateway tries providers in
// order until the first success.
type Provider interface {
	Name() string
	// Configured reports whether the provider has everything it needs to
	// attempt a send. Unconfigured providers are skipped without a network
	// call.
	Configured() bool
	Send(ctx context.Context, msg EmailMessage) (messageID string, err error)
}

// AttemptError records one provider's failure inside a fallback chain.
type AttemptError struct {
	Provider string `json:"provider"`
	Err      string `json:"error"`
}

// DeliveryError is the typed outcome when every configured provider failed,
// or when no provider is configured at all.
type DeliveryError struct {
	Kind      string // entity.ErrorType* value
	Retryable bool
	Attempts  []AttemptError
	Raw       string
}

func (e *DeliveryError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("delivery failed (%s): %s", e.Kind, e.Raw)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Err))
	}
	return fmt.Sprintf("all providers failed (%s): %s", e.Kind, strings.Join(parts, "; "))
}
