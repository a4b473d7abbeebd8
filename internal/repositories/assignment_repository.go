package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"agencycrm/internal/models"
)

// AssignmentRepository reads the lead ownership history for round-robin
// reassignment. Rows are written by LeadRepository together with the lead.
type AssignmentRepository interface {
	LastAssignedAt(ctx context.Context, userIDs []int) (map[int]time.Time, error)
}

type assignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func insertAssignment(ctx context.Context, tx *sql.Tx, a *models.LeadAssignment) error {
	const q = `
		INSERT INTO lead_assignments (lead_id, user_id, assigned_by, reason, assigned_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`
	if err := tx.QueryRowContext(ctx, q, a.LeadID, a.UserID, a.AssignedBy, a.Reason, a.AssignedAt).Scan(&a.ID); err != nil {
		return fmt.Errorf("record lead assignment: %w", err)
	}
	return nil
}

func (r *assignmentRepository) LastAssignedAt(ctx context.Context, userIDs []int) (map[int]time.Time, error) {
	out := make(map[int]time.Time, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	ids := make([]int64, len(userIDs))
	for i, id := range userIDs {
		ids[i] = int64(id)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, MAX(assigned_at)
		FROM lead_assignments
		WHERE user_id = ANY($1)
		GROUP BY user_id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("last assignment per user: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int
			at time.Time
		)
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		out[id] = at
	}
	return out, rows.Err()
}
