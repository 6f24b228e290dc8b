package worker

import (
	"context"
	"log"
	"time"

	"github.com/ahmar7/betabase-sub002/internal/entity"
	"github.com/ahmar7/betabase-sub002/internal/infra/http/middleware"
	"github.com/ahmar7/betabase-sub002/internal/infra/mail"
)

const (
	DefaultDrainInterval = 30 * time.Second
	DefaultDrainBatch    = 1
	DefaultMaxAttempts   = 3
)

// MailGateway is the slice of the provider gateway the drain needs.
type MailGateway interface {
	Send(ctx context.Context, msg mail.EmailMessage) (mail.SendResult, error)
}

// EmailQueueWorker drains the pending welcome-email queue on a fixed
// cadence. The cadence itself is the throttle: with the defaults, one
// message per 30s tick is 120 an hour, under the ~150/hour cap of the
// cheapest provider tier. Raising batchLimit without slowing tickInterval
// breaks that bound. Batches are claimed atomically, so overlapping drains
// never double-send.
type EmailQueueWorker struct {
	pendingRepo entity.PendingEmailRepositoryInterface
	failedRepo  entity.FailedEmailRepositoryInterface
	gateway     MailGateway
	loginURL    string

	tickInterval time.Duration
	batchLimit   int
	maxAttempts  int
}

func NewEmailQueueWorker(
	pendingRepo entity.PendingEmailRepositoryInterface,
	failedRepo entity.FailedEmailRepositoryInterface,
	gateway MailGateway,
	loginURL string,
) *EmailQueueWorker {
	return &EmailQueueWorker{
		pendingRepo:  pendingRepo,
		failedRepo:   failedRepo,
		gateway:      gateway,
		loginURL:     loginURL,
		tickInterval: DefaultDrainInterval,
		batchLimit:   DefaultDrainBatch,
		maxAttempts:  DefaultMaxAttempts,
	}
}

func (w *EmailQueueWorker) Start(ctx context.Context) {
	log.Printf("[email-queue] worker started (every %s, batch %d)", w.tickInterval, w.batchLimit)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[email-queue] worker stopped")
			return
		case <-ticker.C:
			if _, err := w.DrainOnce(ctx); err != nil {
				log.Printf("[email-queue] drain failed: %v", err)
			}
		}
	}
}

// DrainOnce claims one bounded batch and attempts each message once.
// Delivered rows are deleted; failures either go back for a later tick or,
// once the attempt ceiling is hit, move to the failed-send ledger.
func (w *EmailQueueWorker) DrainOnce(ctx context.Context) (int, error) {
	batch, err := w.pendingRepo.ClaimBatch(ctx, w.batchLimit)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	processed := 0
	for _, p := range batch {
		w.deliver(ctx, p)
		processed++
	}

	log.Printf("[email-queue] drained %d messages", processed)
	return processed, nil
}

func (w *EmailQueueWorker) deliver(ctx context.Context, p *entity.PendingEmail) {
	html, text, err := mail.RenderWelcome(mail.WelcomeEmailData{
		Name:     p.FirstName,
		Email:    p.Email,
		Password: p.Password,
		LoginURL: w.loginURL,
	})
	if err != nil {
		log.Printf("[email-queue] render for %s: %v", p.Email, err)
		w.fail(ctx, p, err.Error(), entity.ErrorTypeOther)
		return
	}

	result, err := w.gateway.Send(ctx, mail.EmailMessage{
		To:       p.Email,
		ToName:   p.FirstName + " " + p.LastName,
		Subject:  mail.WelcomeSubject(p.FirstName),
		HTMLBody: html,
		TextBody: text,
		LeadName: p.FirstName + " " + p.LastName,
	})
	if err != nil {
		errorType, _ := mail.Classify(err.Error())
		middleware.RecordEmailFailure(errorType)
		w.fail(ctx, p, err.Error(), errorType)
		return
	}

	middleware.RecordEmailSent(result.Provider)

	// delivery confirmed, the queue row has done its job
	if err := w.pendingRepo.Delete(ctx, p.ID); err != nil {
		log.Printf("[email-queue] deleting delivered row %s: %v", p.ID, err)
	}
}

func (w *EmailQueueWorker) fail(ctx context.Context, p *entity.PendingEmail, reason, errorType string) {
	if p.Attempts+1 < w.maxAttempts {
		if err := w.pendingRepo.MarkRetrying(ctx, p.ID); err != nil {
			log.Printf("[email-queue] marking %s retrying: %v", p.ID, err)
		}
		return
	}

	// ceiling hit: hand the message to the operator-facing ledger
	html, _, rerr := mail.RenderWelcome(mail.WelcomeEmailData{
		Name:     p.FirstName,
		Email:    p.Email,
		Password: p.Password,
		LoginURL: w.loginURL,
	})
	if rerr != nil {
		html = ""
	}

	failed := entity.NewFailedEmail(
		p.Email,
		mail.WelcomeSubject(p.FirstName),
		html,
		p.FirstName+" "+p.LastName,
		reason,
		errorType,
	)
	failed.RetryCount = p.Attempts + 1

	if err := w.failedRepo.Create(ctx, failed); err != nil {
		log.Printf("[email-queue] recording failed email for %s: %v", p.Email, err)
		// keep the pending row so the message is not lost
		if err := w.pendingRepo.MarkRetrying(ctx, p.ID); err != nil {
			log.Printf("[email-queue] marking %s retrying: %v", p.ID, err)
		}
		return
	}

	if err := w.pendingRepo.Delete(ctx, p.ID); err != nil {
		log.Printf("[email-queue] deleting exhausted row %s: %v", p.ID, err)
	}
}
