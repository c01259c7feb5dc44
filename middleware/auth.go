package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDKey = "user_id"
	EmailKey  = "email"
	RoleKey   = "role"
)

// AuthMiddleware verifies the Bearer token on protected write endpoints and
// stashes the caller's identity in the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		if sub, _ := claims["userId"].(float64); sub != 0 {
			c.Set(UserIDKey, int(sub))
		}
		if email, _ := claims["email"].(string); email != "" {
			c.Set(EmailKey, email)
		}
		if role, _ := claims["role"].(string); role != "" {
			c.Set(RoleKey, role)
		}

		c.Next()
	}
}

// GetEmail returns the authenticated caller's email, if any.
func GetEmail(c *gin.Context) string {
	email, _ := c.Get(EmailKey)
	s, _ := email.(string)
	return s
}
