package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"agencycrm/internal/middleware"
	"agencycrm/internal/models"
	"agencycrm/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInvalid        = errors.New("full name, email and password are required")
)

type AuthService struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, secret []byte, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{users: users, secret: secret, ttl: ttl, log: log.Named("auth"), now: time.Now}
}

// Login checks the password and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.Active || strings.TrimSpace(user.PasswordHash) == "" {
		s.log.Info("login rejected", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login rejected: password mismatch", zap.Int("user_id", user.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := middleware.IssueToken(s.secret, user.ID, user.RoleID, s.ttl, s.now())
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	s.log.Info("login", zap.Int("user_id", user.ID), zap.Int("role_id", user.RoleID))
	return token, user, nil
}

// Register creates an active user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string, roleID int) (*models.User, error) {
	fullName, email = strings.TrimSpace(fullName), strings.TrimSpace(email)
	if fullName == "" || email == "" || password == "" {
		return nil, ErrUserInvalid
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       roleID,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
