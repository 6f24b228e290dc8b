package usecase

import (
	"context"

	"github.com/ahmar7/betabase-sub002/internal/entity"
	"github.com/ahmar7/betabase-sub002/internal/infra/mail"
)

// EmailGateway is the provider fallback chain, one message at a time.
type EmailGateway interface {
	Send(ctx context.Context, msg mail.EmailMessage) (mail.SendResult, error)
}

// BatchEmailSender drains a message list under the throughput ceiling.
type BatchEmailSender interface {
	SendBatch(ctx context.Context, msgs []mail.EmailMessage, onProgress mail.ProgressFunc) (mail.BatchResult, error)
}

// ProgressReporter receives one event per orchestration step.
type ProgressReporter interface {
	Push(sessionID string, ev entity.ActivationProgress)
}

// Notifier broadcasts best-effort events to live dashboards. Implementations
// must never let a failed emit surface to the caller.
type Notifier interface {
	Emit(event string, payload any)
}

// NoopNotifier is the default when no broker is wired.
type NoopNotifier struct{}

func (NoopNotifier) Emit(event string, payload any) {}
