package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"agencycrm/internal/models"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)

	// UpdateWithAssignment saves an owner change and its history row in one
	// transaction.
	UpdateWithAssignment(ctx context.Context, lead *models.Lead, a *models.LeadAssignment) error

	// ClaimIfUnassigned sets a.UserID as owner of a.LeadID only while
	// assigned_to is still NULL, and records a in the same transaction.
	// It reports false when another writer got there first.
	ClaimIfUnassigned(ctx context.Context, a *models.LeadAssignment) (bool, error)
	ListDueReminders(ctx context.Context, until time.Time, limit int) ([]models.Lead, error)
}

type leadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) LeadRepository {
	return &leadRepository{db: db}
}

const leadColumns = `id, client_name, mobile, email, nationality, service_required, lead_source,
       status, assigned_to, remind_me, hot, created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (*models.Lead, error) {
	var (
		l        models.Lead
		assigned sql.NullInt64
		remind   sql.NullTime
	)
	if err := row.Scan(
		&l.ID, &l.ClientName, &l.Mobile, &l.Email, &l.Nationality, &l.ServiceRequired, &l.LeadSource,
		&l.Status, &assigned, &remind, &l.Hot, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if assigned.Valid {
		v := int(assigned.Int64)
		l.AssignedTo = &v
	}
	if remind.Valid {
		v := remind.Time
		l.RemindMe = &v
	}
	return &l, nil
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	const q = `
		INSERT INTO leads (id, client_name, mobile, email, nationality, service_required, lead_source,
		                   status, assigned_to, remind_me, hot, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.db.ExecContext(ctx, q,
		lead.ID, lead.ClientName, lead.Mobile, lead.Email, lead.Nationality, lead.ServiceRequired, lead.LeadSource,
		lead.Status, lead.AssignedTo, lead.RemindMe, lead.Hot, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lead %s: %w", id, err)
	}
	return lead, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *leadRepository) Update(ctx context.Context, lead *models.Lead) error {
	return updateLead(ctx, r.db, lead)
}

func updateLead(ctx context.Context, db execer, lead *models.Lead) error {
	const q = `
		UPDATE leads SET
			client_name=$1, mobile=$2, email=$3, nationality=$4, service_required=$5, lead_source=$6,
			status=$7, assigned_to=$8, remind_me=$9, hot=$10, updated_at=$11
		WHERE id=$12`
	res, err := db.ExecContext(ctx, q,
		lead.ClientName, lead.Mobile, lead.Email, lead.Nationality, lead.ServiceRequired, lead.LeadSource,
		lead.Status, lead.AssignedTo, lead.RemindMe, lead.Hot, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return fmt.Errorf("update lead %s: %w", lead.ID, err)
	}
	return expectOneRow(res, "lead", lead.ID)
}

func (r *leadRepository) UpdateWithAssignment(ctx context.Context, lead *models.Lead, a *models.LeadAssignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lead tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := updateLead(ctx, tx, lead); err != nil {
		return err
	}
	if err := insertAssignment(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}
	return expectOneRow(res, "lead", id)
}

func (r *leadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argID))
		args = append(args, *filter.AssignedTo)
		argID++
	}
	if filter.Unassigned {
		conditions = append(conditions, "assigned_to IS NULL")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *leadRepository) ClaimIfUnassigned(ctx context.Context, a *models.LeadAssignment) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE leads SET assigned_to=$1, updated_at=$2 WHERE id=$3 AND assigned_to IS NULL`,
		a.UserID, a.AssignedAt, a.LeadID)
	if err != nil {
		return false, fmt.Errorf("claim lead %s: %w", a.LeadID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := insertAssignment(ctx, tx, a); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit claim %s: %w", a.LeadID, err)
	}
	return true, nil
}

func (r *leadRepository) ListDueReminders(ctx context.Context, until time.Time, limit int) ([]models.Lead, error) {
	q := `
SELECT ` + leadColumns + `
FROM leads
WHERE remind_me IS NOT NULL
  AND remind_me <= $1
  AND assigned_to IS NOT NULL
  AND status NOT IN ('LOST','SOLD')
ORDER BY remind_me ASC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, until, limit)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
