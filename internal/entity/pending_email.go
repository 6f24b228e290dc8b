package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	PendingEmailStatusPending    = "pending"
	PendingEmailStatusProcessing = "processing"
	PendingEmailStatusRetrying   = "retrying"
)

// PendingEmail is a welcome email queued for a freshly activated user.
// A row exists here iff the user was created but delivery has not been
// confirmed yet. The background drain deletes the row on success.
type PendingEmail struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Password    string     `json:"-"` // one-time plaintext delivered in the welcome mail
	LeadID      string     `json:"lead_id"`
	Attempts    int        `json:"attempts"`
	Status      string     `json:"status"` // pending, processing, retrying
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewPendingEmail(userID, email, firstName, lastName, password, leadID string) *PendingEmail {
	return &PendingEmail{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
		LeadID:    leadID,
		Status:    PendingEmailStatusPending,
		CreatedAt: time.Now(),
	}
}

type PendingEmailRepositoryInterface interface {
	// CreateBatch inserts all items and returns how many rows landed.
	// A partial failure still reports the successful count.
	CreateBatch(ctx context.Context, items []*PendingEmail) (int, error)

	// ClaimBatch atomically flips up to limit rows with status in
	// (pending, retrying) to processing and returns them. Two concurrent
	// drains can never claim the same row.
	ClaimBatch(ctx context.Context, limit int) ([]*PendingEmail, error)

	// MarkRetrying releases a claimed row back for a later drain,
	// bumping attempts and last_attempt.
	MarkRetrying(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error
	CountPending(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*PendingEmail, error)

	// Clear deletes every queued row and returns the count removed.
	Clear(ctx context.Context) (int, error)
}
