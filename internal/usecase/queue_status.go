package usecase

import (
	"context"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

const recentPendingLimit = 100

type QueueStatusOutput struct {
	Pending int                    `json:"pending"`
	Failed  int                    `json:"failed"`
	Recent  []*entity.PendingEmail `json:"recent"`
}

// EmailQueueStatusUseCase powers the operator dashboard: queue depths plus
// the most recent queued records.
type EmailQueueStatusUseCase struct {
	PendingRepo entity.PendingEmailRepositoryInterface
	FailedRepo  entity.FailedEmailRepositoryInterface
	Notifier    Notifier
}

func NewEmailQueueStatusUseCase(pendingRepo entity.PendingEmailRepositoryInterface, failedRepo entity.FailedEmailRepositoryInterface, notifier Notifier) *EmailQueueStatusUseCase {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &EmailQueueStatusUseCase{
		PendingRepo: pendingRepo,
		FailedRepo:  failedRepo,
		Notifier:    notifier,
	}
}

func (uc *EmailQueueStatusUseCase) Execute(ctx context.Context) (*QueueStatusOutput, error) {
	pending, err := uc.PendingRepo.CountPending(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: "QUEUE_COUNT_FAILED", Message: err.Error()}
	}

	failed, err := uc.FailedRepo.CountPending(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: "LEDGER_COUNT_FAILED", Message: err.Error()}
	}

	recent, err := uc.PendingRepo.ListRecent(ctx, recentPendingLimit)
	if err != nil {
		return nil, &TechnicalError{Code: "QUEUE_LIST_FAILED", Message: err.Error()}
	}

	return &QueueStatusOutput{Pending: pending, Failed: failed, Recent: recent}, nil
}

// ClearQueue hard-deletes every queued welcome email. Privileged and
// destructive; the fresh queue depth is broadcast afterwards.
func (uc *EmailQueueStatusUseCase) ClearQueue(ctx context.Context) (int, error) {
	cleared, err := uc.PendingRepo.Clear(ctx)
	if err != nil {
		return 0, &TechnicalError{Code: "QUEUE_CLEAR_FAILED", Message: err.Error()}
	}

	uc.Notifier.Emit("email_queue_updated", map[string]any{"queued": 0, "cleared": cleared})
	return cleared, nil
}
