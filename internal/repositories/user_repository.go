package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agencycrm/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListActiveByRole(ctx context.Context, roleID int) ([]models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, full_name, email, password_hash, role_id, active, telegram_chat_id`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var chatID sql.NullInt64
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.RoleID, &u.Active, &chatID); err != nil {
		return nil, err
	}
	if chatID.Valid {
		v := chatID.Int64
		u.TelegramChatID = &v
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (full_name, email, password_hash, role_id, active, telegram_chat_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`
	return r.DB.QueryRowContext(ctx, q,
		user.FullName, user.Email, user.PasswordHash, user.RoleID, user.Active, user.TelegramChatID,
	).Scan(&user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) ListActiveByRole(ctx context.Context, roleID int) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role_id = $1 AND active ORDER BY id`, roleID)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
