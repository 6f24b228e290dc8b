package mail

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

const (
	DefaultBatchSize             = 1
	DefaultBatchDelay            = 20 * time.Second
	DefaultFailureCountThreshold = 3
	DefaultFailureRatioThreshold = 0.30
)

// GatewaySender is what the batch sender needs from the provider gateway.
type GatewaySender interface {
	Send(ctx context.Context, msg EmailMessage) (SendResult, error)
}

// ProgressFunc is called after every batch with the running totals. The
// call is synchronous: the sender waits for it before moving on, which is
// the back-pressure point for slow consumers.
type ProgressFunc func(sent, failed int) error

type BatchResult struct {
	Sent         int
	Failed       int
	LimitReached bool
}

// BatchSender drains a message list through the gateway under a fixed
// throughput ceiling: batches of BatchSize sent concurrently, a full Delay
// between batches, no exceptions. With the defaults (1 msg / 20s) that is
// 3 per minute, under the ~150/hour cap of the cheapest provider tier.
type BatchSender struct {
	Gateway    GatewaySender
	FailedRepo entity.FailedEmailRepositoryInterface

	BatchSize             int
	Delay                 time.Duration
	FailureCountThreshold int
	FailureRatioThreshold float64

	// sleep is swappable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewBatchSender(gateway GatewaySender, failedRepo entity.FailedEmailRepositoryInterface) *BatchSender {
	return &BatchSender{
		Gateway:               gateway,
		FailedRepo:            failedRepo,
		BatchSize:             DefaultBatchSize,
		Delay:                 DefaultBatchDelay,
		FailureCountThreshold: DefaultFailureCountThreshold,
		FailureRatioThreshold: DefaultFailureRatioThreshold,
		sleep:                 sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type sendOutcome struct {
	msg EmailMessage
	err error
}

// SendBatch attempts every message exactly once. Individual failures never
// abort the run; they are persisted to the failed-email ledger and counted.
func (s *BatchSender) SendBatch(ctx context.Context, msgs []EmailMessage, onProgress ProgressFunc) (BatchResult, error) {
	var result BatchResult
	if len(msgs) == 0 {
		return result, nil
	}

	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for start := 0; start < len(msgs); start += batchSize {
		end := start + batchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		batch := msgs[start:end]

		outcomes := s.dispatch(ctx, batch)

		var failed []*entity.FailedEmail
		for _, o := range outcomes {
			if o.err == nil {
				result.Sent++
				continue
			}
			result.Failed++
			errorType, _ := Classify(o.err.Error())
			failed = append(failed, entity.NewFailedEmail(
				o.msg.To, o.msg.Subject, o.msg.HTMLBody, o.msg.LeadName,
				o.err.Error(), errorType,
			))
		}

		if len(failed) > 0 {
			if _, err := s.FailedRepo.CreateBatch(ctx, failed); err != nil {
				// never let ledger bookkeeping kill the run
				log.Printf("[batch-sender] failed to persist %d failed emails: %v", len(failed), err)
			}
		}

		if !result.LimitReached && s.limitReached(result.Sent, result.Failed) {
			log.Printf("[batch-sender] provider throttling suspected: %d failures out of %d attempts",
				result.Failed, result.Sent+result.Failed)
			result.LimitReached = true
		}

		if onProgress != nil {
			if err := onProgress(result.Sent, result.Failed); err != nil {
				log.Printf("[batch-sender] progress callback error: %v", err)
			}
		}

		// the inter-batch delay is the throttle; it is never skipped,
		// not even when the whole batch failed
		if end < len(msgs) {
			if err := s.sleep(ctx, s.Delay); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// dispatch sends one batch concurrently and collects every settled outcome.
// One message's rejection never cancels its siblings.
func (s *BatchSender) dispatch(ctx context.Context, batch []EmailMessage) []sendOutcome {
	outcomes := make([]sendOutcome, len(batch))

	var wg sync.WaitGroup
	for i, msg := range batch {
		wg.Add(1)
		go func(i int, msg EmailMessage) {
			defer wg.Done()
			_, err := s.Gateway.Send(ctx, msg)
			outcomes[i] = sendOutcome{msg: msg, err: err}
		}(i, msg)
	}
	wg.Wait()

	return outcomes
}

// limitReached applies the throttle heuristic: the run is flagged only when
// failures exceed both an absolute count and a share of all attempts. The
// thresholds are tunables, not laws.
func (s *BatchSender) limitReached(sent, failed int) bool {
	countThreshold := s.FailureCountThreshold
	if countThreshold <= 0 {
		countThreshold = DefaultFailureCountThreshold
	}
	ratioThreshold := s.FailureRatioThreshold
	if ratioThreshold <= 0 {
		ratioThreshold = DefaultFailureRatioThreshold
	}

	total := sent + failed
	if total == 0 {
		return false
	}
	return failed > countThreshold && float64(failed)/float64(total) > ratioThreshold
}
