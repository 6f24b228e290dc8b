package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	FailedEmailStatusPending          = "pending"
	FailedEmailStatusRetrying         = "retrying"
	FailedEmailStatusSent             = "sent"
	FailedEmailStatusPermanentFailure = "permanent_failure"
)

const (
	ErrorTypeRateLimit      = "rate_limit"
	ErrorTypeQuotaExceeded  = "quota_exceeded"
	ErrorTypeAuthentication = "authentication"
	ErrorTypeTimeout        = "timeout"
	ErrorTypeOther          = "other"
)

// FailedEmail is a message that exhausted automatic delivery attempts.
// It sits in the ledger until an operator resends or deletes it.
// Rows that reach status sent are kept for audit only and purged after
// the retention window.
type FailedEmail struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Subject       string     `json:"subject"`
	Body          string     `json:"body"`
	LeadName      string     `json:"lead_name,omitempty"`
	FailureReason string     `json:"failure_reason"`
	ErrorType     string     `json:"error_type"` // rate_limit, quota_exceeded, authentication, timeout, other
	RetryCount    int        `json:"retry_count"`
	Status        string     `json:"status"` // pending, retrying, sent, permanent_failure
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewFailedEmail(email, subject, body, leadName, reason, errorType string) *FailedEmail {
	return &FailedEmail{
		ID:            uuid.New().String(),
		Email:         email,
		Subject:       subject,
		Body:          body,
		LeadName:      leadName,
		FailureReason: reason,
		ErrorType:     errorType,
		Status:        FailedEmailStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

type FailedEmailRepositoryInterface interface {
	Create(ctx context.Context, f *FailedEmail) error
	CreateBatch(ctx context.Context, items []*FailedEmail) (int, error)

	// List pages through the ledger. An empty status excludes sent rows;
	// an explicit status filters to exactly that status. Returns the page
	// plus the total count for the filter.
	List(ctx context.Context, status string, page, limit int) ([]*FailedEmail, int, error)

	FindByIDs(ctx context.Context, ids []string) ([]*FailedEmail, error)

	// MarkRetrying flips a pending row to retrying and bumps retry_count.
	MarkRetrying(ctx context.Context, id string) error
	// MarkSent records a successful manual resend.
	MarkSent(ctx context.Context, id string) error
	// MarkPending puts a row back to pending with a fresh failure reason.
	MarkPending(ctx context.Context, id, reason, errorType string) error
	// MarkPermanentFailure retires a row that exhausted manual retries on a
	// failure that cannot self-heal. Terminal until an operator deletes it.
	MarkPermanentFailure(ctx context.Context, id, reason, errorType string) error

	DeleteByIDs(ctx context.Context, ids []string) (int, error)
	CountPending(ctx context.Context) (int, error)

	// PurgeSentBefore removes sent rows older than cutoff.
	PurgeSentBefore(ctx context.Context, cutoff time.Time) (int, error)
}
