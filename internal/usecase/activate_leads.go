package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahmar7/betabase-sub002/internal/entity"
	"github.com/ahmar7/betabase-sub002/internal/infra/mail"
)

// ActivateLeadsUseCase converts a batch of leads into user accounts and
// queues their welcome emails. Leads are read-only here; the use case is the
// only component allowed to bridge the lead store and the user store.
type ActivateLeadsUseCase struct {
	LeadRepo    entity.LeadRepositoryInterface
	UserRepo    entity.UserRepositoryInterface
	PendingRepo entity.PendingEmailRepositoryInterface
	Sender      BatchEmailSender
	Progress    ProgressReporter
	Notifier    Notifier
	LoginURL    string
}

func NewActivateLeadsUseCase(
	leadRepo entity.LeadRepositoryInterface,
	userRepo entity.UserRepositoryInterface,
	pendingRepo entity.PendingEmailRepositoryInterface,
	sender BatchEmailSender,
	progress ProgressReporter,
	notifier Notifier,
	loginURL string,
) *ActivateLeadsUseCase {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ActivateLeadsUseCase{
		LeadRepo:    leadRepo,
		UserRepo:    userRepo,
		PendingRepo: pendingRepo,
		Sender:      sender,
		Progress:    progress,
		Notifier:    notifier,
		LoginURL:    loginURL,
	}
}

// Run adapts Execute for the activation queue worker: decoupled variant,
// ids only.
func (uc *ActivateLeadsUseCase) Run(ctx context.Context, sessionID string, leadIDs []string) error {
	_, err := uc.Execute(ctx, ActivateLeadsInput{SessionID: sessionID, LeadIDs: leadIDs})
	return err
}

// Execute is idempotent: re-running with overlapping lead ids skips every
// lead whose email already maps to a user, never double-creating. A single
// lead failure never aborts the batch.
func (uc *ActivateLeadsUseCase) Execute(ctx context.Context, input ActivateLeadsInput) (*ActivateLeadsOutput, error) {
	if validationErrors := ValidateActivateLeadsInput(input); len(validationErrors) > 0 {
		errMsg := "validation failed: "
		for _, e := range validationErrors {
			errMsg += e.Field + " (" + e.Message + "), "
		}
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: errMsg}
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	out := &ActivateLeadsOutput{SessionID: sessionID}

	leads, err := uc.LeadRepo.FindByIDs(ctx, input.LeadIDs)
	if err != nil {
		uc.push(sessionID, entity.ActivationProgress{
			Type: entity.ProgressTypeError,
			Msg:  "failed to load leads: " + err.Error(),
		})
		return nil, &TechnicalError{Code: "LEAD_LOOKUP_FAILED", Message: err.Error()}
	}

	out.Total = len(leads)
	if len(leads) == 0 {
		uc.push(sessionID, entity.ActivationProgress{
			Type: entity.ProgressTypeComplete,
			Msg:  "no matching leads to activate",
		})
		return out, nil
	}

	log.Printf("[activation] session=%s starting, %d leads", sessionID, len(leads))
	uc.push(sessionID, entity.ActivationProgress{
		Type:  entity.ProgressTypeStart,
		Total: out.Total,
		Msg:   fmt.Sprintf("activating %d leads", out.Total),
	})

	var pendings []*entity.PendingEmail
	for i, lead := range leads {
		msg := uc.activateOne(ctx, lead, out, &pendings)

		uc.push(sessionID, entity.ActivationProgress{
			Type:       entity.ProgressTypeProgress,
			Total:      out.Total,
			Activated:  out.Activated,
			Skipped:    out.Skipped,
			Failed:     out.Failed,
			Percentage: (i + 1) * 100 / out.Total,
			Msg:        msg,
		})
	}

	if len(pendings) > 0 {
		queued, err := uc.PendingRepo.CreateBatch(ctx, pendings)
		if err != nil {
			log.Printf("[activation] session=%s queueing welcome emails failed: %v", sessionID, err)
		}
		out.EmailsQueued = queued
		uc.Notifier.Emit("email_queue_updated", map[string]any{"queued": queued})
	}

	if input.InlineSend && uc.Sender != nil && len(pendings) > 0 {
		uc.sendInline(ctx, sessionID, pendings, out)
	}

	uc.push(sessionID, entity.ActivationProgress{
		Type:              entity.ProgressTypeComplete,
		Total:             out.Total,
		Activated:         out.Activated,
		Skipped:           out.Skipped,
		Failed:            out.Failed,
		EmailsSent:        out.EmailsSent,
		EmailsFailed:      out.EmailsFailed,
		EmailsPending:     out.EmailsQueued - out.EmailsSent - out.EmailsFailed,
		Percentage:        100,
		EmailLimitReached: out.EmailLimitReached,
		Msg: fmt.Sprintf("done: %d activated, %d skipped, %d failed",
			out.Activated, out.Skipped, out.Failed),
	})

	log.Printf("[activation] session=%s done: activated=%d skipped=%d failed=%d queued=%d",
		sessionID, out.Activated, out.Skipped, out.Failed, out.EmailsQueued)

	return out, nil
}

// activateOne processes a single lead and returns the progress message.
// Errors are folded into the counters, never propagated.
func (uc *ActivateLeadsUseCase) activateOne(ctx context.Context, lead *entity.Lead, out *ActivateLeadsOutput, pendings *[]*entity.PendingEmail) string {
	existing, err := uc.UserRepo.FindByEmail(ctx, lead.Email)
	if err != nil {
		out.Failed++
		return fmt.Sprintf("lookup failed for %s: %v", lead.Email, err)
	}
	if existing != nil {
		out.Skipped++
		return fmt.Sprintf("%s already has an account, skipped", lead.Email)
	}

	password, err := generatePassword()
	if err != nil {
		out.Failed++
		return fmt.Sprintf("password generation failed for %s: %v", lead.Email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		out.Failed++
		return fmt.Sprintf("password hash failed for %s: %v", lead.Email, err)
	}

	firstName := sanitizeName(lead.FirstName, "Customer")
	lastName := sanitizeName(lead.LastName, "User")

	user := entity.NewUserFromLead(
		firstName, lastName, lead.Email,
		normalizePhone(lead.Phone), string(hash), lead.ID,
	)

	if err := uc.UserRepo.Create(ctx, user); err != nil {
		// a concurrent run got there first; same outcome as the pre-check
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			out.Skipped++
			return fmt.Sprintf("%s already has an account, skipped", lead.Email)
		}
		out.Failed++
		return fmt.Sprintf("creating user for %s failed: %v", lead.Email, err)
	}

	out.Activated++
	*pendings = append(*pendings,
		entity.NewPendingEmail(user.ID, user.Email, firstName, lastName, password, lead.ID))

	return fmt.Sprintf("activated %s", lead.Email)
}

// sendInline drives delivery within the request, for the tightly coupled
// variant. Pipeline failures are already persisted by the batch sender.
func (uc *ActivateLeadsUseCase) sendInline(ctx context.Context, sessionID string, pendings []*entity.PendingEmail, out *ActivateLeadsOutput) {
	var msgs []mail.EmailMessage
	var settled []*entity.PendingEmail
	for _, p := range pendings {
		html, text, err := mail.RenderWelcome(mail.WelcomeEmailData{
			Name:     p.FirstName,
			Email:    p.Email,
			Password: p.Password,
			LoginURL: uc.LoginURL,
		})
		if err != nil {
			log.Printf("[activation] render welcome for %s: %v", p.Email, err)
			continue
		}
		msgs = append(msgs, mail.EmailMessage{
			To:       p.Email,
			ToName:   p.FirstName + " " + p.LastName,
			Subject:  mail.WelcomeSubject(p.FirstName),
			HTMLBody: html,
			TextBody: text,
			LeadName: p.FirstName + " " + p.LastName,
		})
		settled = append(settled, p)
	}

	result, err := uc.Sender.SendBatch(ctx, msgs, func(sent, failed int) error {
		uc.push(sessionID, entity.ActivationProgress{
			Type:          entity.ProgressTypeProgress,
			Total:         out.Total,
			Activated:     out.Activated,
			Skipped:       out.Skipped,
			Failed:        out.Failed,
			EmailsSent:    sent,
			EmailsFailed:  failed,
			EmailsPending: len(msgs) - sent - failed,
			Percentage:    100,
			Msg:           fmt.Sprintf("sending emails: %d sent, %d failed", sent, failed),
		})
		return nil
	})
	out.EmailsSent = result.Sent
	out.EmailsFailed = result.Failed
	out.EmailLimitReached = result.LimitReached

	if err != nil {
		log.Printf("[activation] session=%s inline send interrupted: %v", sessionID, err)
		// the sender walks msgs in order, so Sent+Failed is the attempted
		// prefix; rows past the interruption point stay queued for the drain
		if attempted := result.Sent + result.Failed; attempted < len(settled) {
			settled = settled[:attempted]
		}
	}

	// delivered or ledgered either way, attempted rows are settled
	for _, p := range settled {
		if err := uc.PendingRepo.Delete(ctx, p.ID); err != nil {
			log.Printf("[activation] removing settled pending email %s: %v", p.ID, err)
		}
	}
}

func (uc *ActivateLeadsUseCase) push(sessionID string, ev entity.ActivationProgress) {
	if uc.Progress != nil {
		uc.Progress.Push(sessionID, ev)
	}
}

// generatePassword returns a 16-char high-entropy hex one-time password.
func generatePassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// sanitizeName trims and bounds a name to 2-30 characters, falling back to
// a role-appropriate default when the lead field is unusable. Bounds count
// runes, so multi-byte names neither shrink below the minimum nor get cut
// mid-character.
func sanitizeName(name, fallback string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) < 2 {
		return fallback
	}
	if len(runes) > 30 {
		return string(runes[:30])
	}
	return string(runes)
}

// normalizePhone keeps digits only; unparseable input becomes 0.
func normalizePhone(phone string) int64 {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
