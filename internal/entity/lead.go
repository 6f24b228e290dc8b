package entity

import (
	"context"
	"time"
)

const (
	LeadStatusNew           = "New"
	LeadStatusCallBack      = "Call Back"
	LeadStatusNotActive     = "Not Active"
	LeadStatusActive        = "Active"
	LeadStatusNotInterested = "Not Interested"
)

type Lead struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name,omitempty"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Country   string     `json:"country,omitempty"`
	Address   string     `json:"address,omitempty"`
	Status    string     `json:"status"` // New, Call Back, Not Active, Active, Not Interested
	AgentID   *string    `json:"agent_id,omitempty"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type LeadRepositoryInterface interface {
	// FindByIDs returns the leads matching ids, skipping soft-deleted ones.
	// Ids with no matching row are silently absent from the result.
	FindByIDs(ctx context.Context, ids []string) ([]*Lead, error)
}
