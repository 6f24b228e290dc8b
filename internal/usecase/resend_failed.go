package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ahmar7/betabase-sub002/internal/entity"
	"github.com/ahmar7/betabase-sub002/internal/infra/mail"
)

// maxResendAttempts caps manual retries for failures that cannot
// self-heal. A record that hits the cap on a non-retryable error is
// retired as permanent_failure instead of going back to pending.
const maxResendAttempts = 3

// ResendFailedEmailsUseCase is the manual retry path for the failed-send
// ledger. Strictly sequential with the same inter-message delay as the
// batch sender, so manual resends respect the same provider ceiling.
type ResendFailedEmailsUseCase struct {
	FailedRepo entity.FailedEmailRepositoryInterface
	Gateway    EmailGateway
	Delay      time.Duration

	// sleep is swappable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewResendFailedEmailsUseCase(failedRepo entity.FailedEmailRepositoryInterface, gateway EmailGateway, delay time.Duration) *ResendFailedEmailsUseCase {
	if delay <= 0 {
		delay = mail.DefaultBatchDelay
	}
	return &ResendFailedEmailsUseCase{
		FailedRepo: failedRepo,
		Gateway:    gateway,
		Delay:      delay,
		sleep: func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		},
	}
}

func (uc *ResendFailedEmailsUseCase) Execute(ctx context.Context, input ResendFailedEmailsInput) (*ResendFailedEmailsOutput, error) {
	if len(input.IDs) == 0 {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "ids is required"}
	}

	records, err := uc.FailedRepo.FindByIDs(ctx, input.IDs)
	if err != nil {
		return nil, &TechnicalError{Code: "LEDGER_LOOKUP_FAILED", Message: err.Error()}
	}

	out := &ResendFailedEmailsOutput{}
	for i, rec := range records {
		// only pending records are eligible; anything else is a no-op
		if rec.Status != entity.FailedEmailStatusPending {
			log.Printf("[resend] skipping %s, status is %s", rec.ID, rec.Status)
			continue
		}

		if uc.resendOne(ctx, rec) {
			out.Resent++
		} else {
			out.Failed++
		}

		if i < len(records)-1 {
			if err := uc.sleep(ctx, uc.Delay); err != nil {
				return out, err
			}
		}
	}

	return out, nil
}

// resendOne walks one record through retrying -> sent|pending. The record
// must never end up stuck in retrying: any panic or early exit forces it
// back to pending.
func (uc *ResendFailedEmailsUseCase) resendOne(ctx context.Context, rec *entity.FailedEmail) (sent bool) {
	if err := uc.FailedRepo.MarkRetrying(ctx, rec.ID); err != nil {
		log.Printf("[resend] marking %s retrying: %v", rec.ID, err)
		return false
	}

	settled := false
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[resend] panic while resending %s: %v", rec.ID, r)
			sent = false
		}
		if !settled {
			reason := fmt.Sprintf("resend did not complete (was: %s)", rec.FailureReason)
			if err := uc.FailedRepo.MarkPending(ctx, rec.ID, reason, rec.ErrorType); err != nil {
				log.Printf("[resend] forcing %s back to pending: %v", rec.ID, err)
			}
		}
	}()

	_, err := uc.Gateway.Send(ctx, mail.EmailMessage{
		To:       rec.Email,
		ToName:   rec.LeadName,
		Subject:  rec.Subject,
		HTMLBody: rec.Body,
		LeadName: rec.LeadName,
	})
	if err != nil {
		errorType, retryable := mail.Classify(err.Error())
		// rec.RetryCount predates this attempt; MarkRetrying already
		// bumped the stored count, so +1 mirrors the database.
		if !retryable && rec.RetryCount+1 >= maxResendAttempts {
			if mErr := uc.FailedRepo.MarkPermanentFailure(ctx, rec.ID, err.Error(), errorType); mErr != nil {
				log.Printf("[resend] retiring %s as permanent failure: %v", rec.ID, mErr)
			} else {
				settled = true
			}
			return false
		}
		if mErr := uc.FailedRepo.MarkPending(ctx, rec.ID, err.Error(), errorType); mErr != nil {
			log.Printf("[resend] reverting %s to pending: %v", rec.ID, mErr)
		} else {
			settled = true
		}
		return false
	}

	if err := uc.FailedRepo.MarkSent(ctx, rec.ID); err != nil {
		log.Printf("[resend] marking %s sent: %v", rec.ID, err)
		// delivered but not recorded; the deferred fallback reverts to
		// pending rather than leaving the record in retrying
		return false
	}

	settled = true
	return true
}
