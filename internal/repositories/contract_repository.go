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

type ContractRepository interface {
	Create(ctx context.Context, c *models.Contract) error
	GetByID(ctx context.Context, id string) (*models.Contract, error)
	List(ctx context.Context, filter models.ContractFilter) ([]models.Contract, error)
	UpdateStatus(ctx context.Context, id string, status models.ContractStatus, closedAt *time.Time, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type contractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, deal_number, lead_id, owner_id, client_name, client_phone, client_email, service_type,
       deal_value, vat_rate, vat_amount, total_amount, paid_amount, balance_due, status,
       start_date, end_date, worker_id, created_at, updated_at, closed_at`

func scanContract(row interface{ Scan(...any) error }) (*models.Contract, error) {
	var c models.Contract
	var start, end, closed sql.NullTime
	if err := row.Scan(
		&c.ID, &c.DealNumber, &c.LeadID, &c.OwnerID, &c.ClientName, &c.ClientPhone, &c.ClientEmail, &c.ServiceType,
		&c.DealValue, &c.VATRate, &c.VATAmount, &c.TotalAmount, &c.PaidAmount, &c.BalanceDue, &c.Status,
		&start, &end, &c.WorkerID, &c.CreatedAt, &c.UpdatedAt, &closed,
	); err != nil {
		return nil, err
	}
	c.StartDate = nullTimePtr(start)
	c.EndDate = nullTimePtr(end)
	c.ClosedAt = nullTimePtr(closed)
	return &c, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (r *contractRepository) Create(ctx context.Context, c *models.Contract) error {
	const q = `
		INSERT INTO contracts (id, deal_number, lead_id, owner_id, client_name, client_phone, client_email, service_type,
		                       deal_value, vat_rate, vat_amount, total_amount, paid_amount, balance_due, status,
		                       start_date, end_date, worker_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.DealNumber, c.LeadID, c.OwnerID, c.ClientName, c.ClientPhone, c.ClientEmail, c.ServiceType,
		c.DealValue, c.VATRate, c.VATAmount, c.TotalAmount, c.PaidAmount, c.BalanceDue, c.Status,
		c.StartDate, c.EndDate, c.WorkerID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create contract: %w", err)
	}
	return nil
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*models.Contract, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)
	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contract %s: %w", id, err)
	}
	return c, nil
}

func (r *contractRepository) List(ctx context.Context, filter models.ContractFilter) ([]models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argID))
		args = append(args, *filter.OwnerID)
		argID++
	}
	if filter.HasStart {
		conditions = append(conditions, "start_date IS NOT NULL")
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
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var out []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *contractRepository) UpdateStatus(ctx context.Context, id string, status models.ContractStatus, closedAt *time.Time, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET status=$1, closed_at=COALESCE($2, closed_at), updated_at=$3 WHERE id=$4`,
		status, closedAt, at, id)
	if err != nil {
		return fmt.Errorf("update contract status %s: %w", id, err)
	}
	return expectOneRow(res, "contract", id)
}

func (r *contractRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contracts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete contract %s: %w", id, err)
	}
	return expectOneRow(res, "contract", id)
}
