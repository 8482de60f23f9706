package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tawargy/project-manager/internal/model"
	"github.com/tawargy/project-manager/pkg/jwt"
	"gorm.io/gorm"
)

// AuthMiddleware resolves the session: it parses the bearer token, loads the
// user row and attaches the principal to the context. Every failure mode is
// a plain 401; downstream code can rely on the principal being present.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header"})
				return
			}
		}

		// Fallback to query param for WebSocket clients, which cannot set
		// custom headers during the handshake.
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "You must be logged in to perform this action"})
			return
		}

		claims, err := jwt.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		var user model.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("userRole", user.Role)
		c.Set("user", &user)
		c.Next()
	}
}

func GetCurrentUser(c *gin.Context) *model.User {
	u, exists := c.Get("user")
	if !exists {
		return nil
	}
	return u.(*model.User)
}

func GetCurrentUserID(c *gin.Context) uint {
	id, _ := c.Get("userID")
	return id.(uint)
}

func GetCurrentUserRole(c *gin.Context) string {
	role, _ := c.Get("userRole")
	return role.(string)
}
