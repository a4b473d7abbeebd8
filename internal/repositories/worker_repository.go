package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agencycrm/internal/models"
)

type WorkerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Worker, error)
	UpdateStatus(ctx context.Context, id string, status models.WorkerStatus) error
}

type workerRepository struct {
	db *sql.DB
}

func NewWorkerRepository(db *sql.DB) WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	w := &models.Worker{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, nationality, status FROM workers WHERE id = $1`, id,
	).Scan(&w.ID, &w.FullName, &w.Nationality, &w.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get worker %s: %w", id, err)
	}
	return w, nil
}

func (r *workerRepository) UpdateStatus(ctx context.Context, id string, status models.WorkerStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE workers SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return fmt.Errorf("update worker status %s: %w", id, err)
	}
	return expectOneRow(res, "worker", id)
}
