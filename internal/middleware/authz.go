package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agencycrm/internal/authz"
)

// Require admits the request when check accepts the caller's role, e.g.
// Require(authz.IsAdmin). It must run after AuthMiddleware.
func Require(check func(roleID int) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, ok := roleFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if !check(roleID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ReadOnlyGuard lets read-only roles (audit) through on safe methods only.
func ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if roleID, ok := roleFrom(c); ok && authz.IsReadOnly(roleID) && !isSafeMethod(c.Request.Method) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read-only role"})
			return
		}
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func roleFrom(c *gin.Context) (int, bool) {
	v, ok := c.Get(roleIDKey)
	if !ok {
		return 0, false
	}
	roleID, ok := v.(int)
	return roleID, ok
}
