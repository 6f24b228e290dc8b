package worker

import (
	"context"
	"log"
	"time"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

const (
	DefaultPurgeInterval  = 1 * time.Hour
	DefaultPurgeRetention = 10 * 24 * time.Hour
)

// FailedEmailPurgeWorker sweeps sent ledger rows past the retention window.
// Sent rows are audit leftovers; after ten days nobody looks at them.
type FailedEmailPurgeWorker struct {
	failedRepo   entity.FailedEmailRepositoryInterface
	retention    time.Duration
	tickInterval time.Duration
}

func NewFailedEmailPurgeWorker(failedRepo entity.FailedEmailRepositoryInterface) *FailedEmailPurgeWorker {
	return &FailedEmailPurgeWorker{
		failedRepo:   failedRepo,
		retention:    DefaultPurgeRetention,
		tickInterval: DefaultPurgeInterval,
	}
}

func (w *FailedEmailPurgeWorker) Start(ctx context.Context) {
	log.Printf("[purge] worker started (retention %s)", w.retention)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[purge] worker stopped")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *FailedEmailPurgeWorker) purge(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)

	purged, err := w.failedRepo.PurgeSentBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[purge] sweep failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("[purge] removed %d sent emails older than %s", purged, cutoff.Format(time.RFC3339))
	}
}
