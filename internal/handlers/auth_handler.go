package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencycrm/internal/models"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

type AuthHandler struct {
	authService Authenticator
	log         *zap.Logger
}

func NewAuthHandler(authService Authenticator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log.Named("auth")}
}

// @Summary      Log in
// @Description  Checks credentials and returns a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"user":         user,
		"access_token": token,
	})
}
