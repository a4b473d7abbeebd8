package models

type User struct {
	ID             int    `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"`
	RoleID         int    `json:"role_id"`
	Active         bool   `json:"active"`
	TelegramChatID *int64 `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
