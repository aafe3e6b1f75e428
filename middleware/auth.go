package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/roomstack/room-booking-backend/config"
)

// Role names understood by the role gate. Authentication itself is external:
// the gateway issues the token, we only consume its claims.
const (
	RoleAdmin      = "admin"
	RoleFacilities = "facilities"
	RoleMember     = "member"
)

// AccessContext carries the pre-authorized actor identity for the request.
// Handlers use it for audit fields and capability checks only.
type AccessContext struct {
	UserID   uint
	RoleName string
}

// CanWrite reports whether the actor may mutate rooms/events
func (a AccessContext) CanWrite() bool {
	return a.RoleName == RoleAdmin || a.RoleName == RoleFacilities
}

// CanRead reports whether the actor may query rooms/events
func (a AccessContext) CanRead() bool {
	return a.RoleName != ""
}

// AuthMiddleware parses the bearer token and sets up the access context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTAccessSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id missing in token"})
			return
		}

		role, _ := claims["role"].(string)

		accessContext := AccessContext{
			UserID:   uint(userIDFloat),
			RoleName: role,
		}

		c.Set("access_context", accessContext)
		c.Set("user_id", accessContext.UserID)

		c.Next()
	}
}

// GetAccessContext pulls the access context set by AuthMiddleware
func GetAccessContext(c *gin.Context) (AccessContext, bool) {
	raw, exists := c.Get("access_context")
	if !exists {
		return AccessContext{}, false
	}
	ac, ok := raw.(AccessContext)
	return ac, ok
}
