package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

type PendingEmailRepository struct {
	DB *sql.DB
}

func NewPendingEmailRepository(db *sql.DB) *PendingEmailRepository {
	return &PendingEmailRepository{DB: db}
}

// CreateBatch inserts item by item so a single bad row cannot discard the
// whole batch. Failures are logged and the successful count is returned.
func (r *PendingEmailRepository) CreateBatch(ctx context.Context, items []*entity.PendingEmail) (int, error) {
	query := `
		INSERT INTO pending_emails (id, user_id, email, first_name, last_name,
		                            password, lead_id, attempts, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9, $10)
	`

	inserted := 0
	var firstErr error
	for _, p := range items {
		_, err := r.DB.ExecContext(ctx, query,
			p.ID, p.UserID, p.Email, p.FirstName, p.LastName,
			p.Password, p.LeadID, p.Attempts, p.Status, p.CreatedAt,
		)
		if err != nil {
			log.Printf("[pending-repo] insert for %s failed: %v", p.Email, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		inserted++
	}

	if inserted == 0 && firstErr != nil {
		return 0, fmt.Errorf("queue welcome emails: %w", firstErr)
	}
	return inserted, nil
}

// ClaimBatch flips up to limit claimable rows to processing and returns
// them in one statement. SKIP LOCKED keeps two overlapping drains off the
// same rows.
func (r *PendingEmailRepository) ClaimBatch(ctx context.Context, limit int) ([]*entity.PendingEmail, error) {
	query := `
		UPDATE pending_emails
		SET status = 'processing', last_attempt = NOW()
		WHERE id IN (
			SELECT id FROM pending_emails
			WHERE status IN ('pending', 'retrying')
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, email, first_name, last_name, password,
		          COALESCE(lead_id::text, ''), attempts, status, last_attempt, created_at
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("claim pending emails: %w", err)
	}
	defer rows.Close()

	var items []*entity.PendingEmail
	for rows.Next() {
		var p entity.PendingEmail
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Email, &p.FirstName, &p.LastName, &p.Password,
			&p.LeadID, &p.Attempts, &p.Status, &p.LastAttempt, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}

	return items, rows.Err()
}

func (r *PendingEmailRepository) MarkRetrying(ctx context.Context, id string) error {
	query := `
		UPDATE pending_emails
		SET status = 'retrying', attempts = attempts + 1, last_attempt = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *PendingEmailRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM pending_emails WHERE id = $1`, id)
	return err
}

func (r *PendingEmailRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_emails`).Scan(&count)
	return count, err
}

func (r *PendingEmailRepository) ListRecent(ctx context.Context, limit int) ([]*entity.PendingEmail, error) {
	query := `
		SELECT id, user_id, email, first_name, last_name, password,
		       COALESCE(lead_id::text, ''), attempts, status, last_attempt, created_at
		FROM pending_emails
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.PendingEmail
	for rows.Next() {
		var p entity.PendingEmail
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Email, &p.FirstName, &p.LastName, &p.Password,
			&p.LeadID, &p.Attempts, &p.Status, &p.LastAttempt, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}

	return items, rows.Err()
}

func (r *PendingEmailRepository) Clear(ctx context.Context) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM pending_emails`)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}
