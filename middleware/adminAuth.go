package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"backoffice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAuthMiddleware accepts either the configured static admin token or an
// HS256 JWT carrying role=admin. With neither configured every request is
// rejected.
func AdminAuthMiddleware(staticToken, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if staticToken != "" && subtle.ConstantTimeCompare([]byte(tokenString), []byte(staticToken)) == 1 {
			c.Set("adminID", "static")
			c.Set("isAdmin", true)
			c.Next()
			return
		}

		if jwtSecret != "" {
			sub, err := utils.ParseAdminToken(jwtSecret, tokenString)
			if err == nil {
				c.Set("adminID", sub)
				c.Set("isAdmin", true)
				c.Next()
				return
			}
			zap.L().Debug("admin token rejected", zap.Error(err))
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
	}
}
