package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencycrm/internal/services"
	"agencycrm/internal/utils"
)

// tolerant of the claim types jwt and tests put in the context
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID, roleID int) {
	if id, ok := getIntFromCtx(c, "user_id"); ok {
		userID = id
	}
	if id, ok := getIntFromCtx(c, "role_id"); ok {
		roleID = id
	}
	return
}

func actorFrom(c *gin.Context) services.Actor {
	userID, roleID := getUserAndRole(c)
	return services.Actor{UserID: userID, RoleID: roleID}
}

// asOfParam reads ?as_of=YYYY-MM-DD, defaulting to now.
func asOfParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now(), true
	}
	t, ok := utils.ParseDate(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of date"})
		return time.Time{}, false
	}
	return t, true
}

// statusFor maps service errors to HTTP codes.
func statusFor(err error) int {
	var invalid *services.InvalidStatusError
	switch {
	case errors.As(err, &invalid),
		errors.Is(err, services.ErrLeadInvalid),
		errors.Is(err, services.ErrOwnerIneligible),
		errors.Is(err, services.ErrContractInvalid),
		errors.Is(err, services.ErrPaymentInvalid),
		errors.Is(err, services.ErrNoClientEmail):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrLeadNotFound),
		errors.Is(err, services.ErrContractNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrLeadAlreadyClaimed),
		errors.Is(err, services.ErrLeadAlreadySold),
		errors.Is(err, services.ErrLeadNotSellable),
		errors.Is(err, services.ErrInvalidContractTransition),
		errors.Is(err, services.ErrPaymentNotAllowed),
		errors.Is(err, services.ErrNotProjectable):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoEligibleOwner),
		errors.Is(err, services.ErrEmailNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, log *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
