package mail

import (
	"context"
	"log"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

// Gateway dispatches one message through an ordered provider chain.
// It keeps no state and persists nothing; callers own what happens with
// the outcome.
type Gateway struct {
	providers []Provider
}

func NewGateway(providers ...Provider) *Gateway {
	return &Gateway{providers: providers}
}

// Send tries each configured provider in order and returns on the first
// success. When every configured provider fails the error aggregates all
// attempts; when none is configured no network call is made at all.
func (g *Gateway) Send(ctx context.Context, msg EmailMessage) (SendResult, error) {
	var attempts []AttemptError
	configured := 0

	for _, p := range g.providers {
		if !p.Configured() {
			continue
		}
		configured++

		id, err := p.Send(ctx, msg)
		if err == nil {
			return SendResult{Provider: p.Name(), MessageID: id}, nil
		}

		log.Printf("[mail] provider %s failed for %s: %v", p.Name(), msg.To, err)
		attempts = append(attempts, AttemptError{Provider: p.Name(), Err: err.Error()})
	}

	if configured == 0 {
		return SendResult{}, &DeliveryError{
			Kind:      entity.ErrorTypeOther,
			Retryable: false,
			Raw:       "no email provider configured",
		}
	}

	// classify by the last attempt; earlier providers already fell through
	last := attempts[len(attempts)-1]
	kind, retryable := Classify(last.Err)
	return SendResult{}, &DeliveryError{
		Kind:      kind,
		Retryable: retryable,
		Attempts:  attempts,
		Raw:       last.Err,
	}
}
