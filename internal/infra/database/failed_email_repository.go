package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

type FailedEmailRepository struct {
	DB *sql.DB
}

func NewFailedEmailRepository(db *sql.DB) *FailedEmailRepository {
	return &FailedEmailRepository{DB: db}
}

const failedEmailColumns = `id, email, subject, body, COALESCE(lead_name, ''),
	failure_reason, error_type, retry_count, status, sent_at, created_at, updated_at`

func (r *FailedEmailRepository) Create(ctx context.Context, f *entity.FailedEmail) error {
	query := `
		INSERT INTO failed_emails (id, email, subject, body, lead_name, failure_reason,
		                           error_type, retry_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		f.ID, f.Email, f.Subject, f.Body, f.LeadName, f.FailureReason,
		f.ErrorType, f.RetryCount, f.Status, f.CreatedAt, f.UpdatedAt,
	)
	return err
}

// CreateBatch inserts item by item, counting successes; one bad row never
// discards its siblings.
func (r *FailedEmailRepository) CreateBatch(ctx context.Context, items []*entity.FailedEmail) (int, error) {
	inserted := 0
	var firstErr error
	for _, f := range items {
		if err := r.Create(ctx, f); err != nil {
			log.Printf("[failed-repo] insert for %s failed: %v", f.Email, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		inserted++
	}

	if inserted == 0 && firstErr != nil {
		return 0, fmt.Errorf("record failed emails: %w", firstErr)
	}
	return inserted, nil
}

// List pages the ledger. With no status filter, sent rows are excluded:
// they are audit leftovers, not items needing attention.
func (r *FailedEmailRepository) List(ctx context.Context, status string, page, limit int) ([]*entity.FailedEmail, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where := `status <> 'sent'`
	args := []any{}
	if status != "" {
		where = `status = $1`
		args = append(args, status)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM failed_emails WHERE %s`, where)
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM failed_emails
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, failedEmailColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanFailedEmails(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *FailedEmailRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.FailedEmail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT %s FROM failed_emails WHERE id IN (%s)`,
		failedEmailColumns, strings.Join(placeholders, ", "))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFailedEmails(rows)
}

func (r *FailedEmailRepository) MarkRetrying(ctx context.Context, id string) error {
	query := `
		UPDATE failed_emails
		SET status = 'retrying', retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *FailedEmailRepository) MarkSent(ctx context.Context, id string) error {
	query := `
		UPDATE failed_emails
		SET status = 'sent', sent_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *FailedEmailRepository) MarkPending(ctx context.Context, id, reason, errorType string) error {
	query := `
		UPDATE failed_emails
		SET status = 'pending', failure_reason = $2, error_type = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, reason, errorType)
	return err
}

func (r *FailedEmailRepository) MarkPermanentFailure(ctx context.Context, id, reason, errorType string) error {
	query := `
		UPDATE failed_emails
		SET status = 'permanent_failure', failure_reason = $2, error_type = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, reason, errorType)
	return err
}

func (r *FailedEmailRepository) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`DELETE FROM failed_emails WHERE id IN (%s)`,
		strings.Join(placeholders, ", "))

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *FailedEmailRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM failed_emails WHERE status <> 'sent'`).Scan(&count)
	return count, err
}

func (r *FailedEmailRepository) PurgeSentBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM failed_emails WHERE status = 'sent' AND sent_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func scanFailedEmails(rows *sql.Rows) ([]*entity.FailedEmail, error) {
	var items []*entity.FailedEmail
	for rows.Next() {
		var f entity.FailedEmail
		if err := rows.Scan(
			&f.ID, &f.Email, &f.Subject, &f.Body, &f.LeadName,
			&f.FailureReason, &f.ErrorType, &f.RetryCount, &f.Status,
			&f.SentAt, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &f)
	}
	return items, rows.Err()
}
