package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEmailAlreadyExists = errors.New("email already registered")

// User is an account created from a lead by the activation pipeline.
// Accounts created this way are always role "user" and auto-verified.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        int64     `json:"phone"`
	Role         string    `json:"role"`
	Verified     bool      `json:"verified"`
	LeadID       string    `json:"lead_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewUserFromLead(firstName, lastName, email string, phone int64, passwordHash, leadID string) *User {
	return &User{
		ID:           uuid.New().String(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		Role:         "user",
		Verified:     true,
		LeadID:       leadID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

type UserRepositoryInterface interface {
	// FindByEmail returns (nil, nil) when no user has that email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
}
