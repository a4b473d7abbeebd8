package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"agencycrm/internal/models"
)

type PaymentRepository interface {
	ListByContract(ctx context.Context, contractID string) ([]models.Payment, error)
	ListByContracts(ctx context.Context, contractIDs []string) (map[string][]models.Payment, error)

	// Record and Delete keep contracts.paid_amount and balance_due in step
	// with the payments table inside one transaction.
	Record(ctx context.Context, p *models.Payment) error
	Delete(ctx context.Context, contractID, paymentID string) error
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, contract_id, amount, payment_date, method, reference, bank_account, created_by, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	var p models.Payment
	if err := row.Scan(&p.ID, &p.ContractID, &p.Amount, &p.PaymentDate, &p.Method, &p.Reference,
		&p.BankAccount, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) ListByContract(ctx context.Context, contractID string) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE contract_id=$1 ORDER BY payment_date ASC`, contractID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *paymentRepository) ListByContracts(ctx context.Context, contractIDs []string) (map[string][]models.Payment, error) {
	out := make(map[string][]models.Payment, len(contractIDs))
	if len(contractIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE contract_id = ANY($1::uuid[]) ORDER BY payment_date ASC`,
		pq.Array(contractIDs))
	if err != nil {
		return nil, fmt.Errorf("list payments for contracts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out[p.ContractID] = append(out[p.ContractID], *p)
	}
	return out, rows.Err()
}

func (r *paymentRepository) Record(ctx context.Context, p *models.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO payments (id, contract_id, amount, payment_date, method, reference, bank_account, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := tx.ExecContext(ctx, q, p.ID, p.ContractID, p.Amount, p.PaymentDate, p.Method, p.Reference,
		p.BankAccount, p.CreatedBy, p.CreatedAt); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	if err := refreshContractBalance(ctx, tx, p.ContractID, p.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *paymentRepository) Delete(ctx context.Context, contractID, paymentID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id=$1 AND contract_id=$2`, paymentID, contractID)
	if err != nil {
		return fmt.Errorf("delete payment %s: %w", paymentID, err)
	}
	if err := expectOneRow(res, "payment", paymentID); err != nil {
		return err
	}
	if err := refreshContractBalance(ctx, tx, contractID, time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

func refreshContractBalance(ctx context.Context, tx *sql.Tx, contractID string, at time.Time) error {
	const q = `
		UPDATE contracts c
		SET paid_amount = s.paid, balance_due = c.total_amount - s.paid, updated_at = $2
		FROM (SELECT COALESCE(SUM(amount), 0) AS paid FROM payments WHERE contract_id = $1) s
		WHERE c.id = $1`
	res, err := tx.ExecContext(ctx, q, contractID, at)
	if err != nil {
		return fmt.Errorf("refresh contract balance: %w", err)
	}
	return expectOneRow(res, "contract", contractID)
}
