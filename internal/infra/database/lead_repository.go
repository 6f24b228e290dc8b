package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, first_name, COALESCE(last_name, ''), email, COALESCE(phone, ''),
		       COALESCE(country, ''), COALESCE(address, ''), status, agent_id,
		       is_deleted, deleted_at, created_at, updated_at
		FROM leads
		WHERE id IN (%s) AND is_deleted = FALSE
	`, strings.Join(placeholders, ", "))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find leads by ids: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		var l entity.Lead
		if err := rows.Scan(
			&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone,
			&l.Country, &l.Address, &l.Status, &l.AgentID,
			&l.IsDeleted, &l.DeletedAt, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, &l)
	}

	return leads, rows.Err()
}
