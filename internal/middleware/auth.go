package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"stock-service/internal/models"
)

const ContextUserID = "user_id"

// Claims carries the acting user in the standard subject claim
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: code, Message: message},
	})
}

// AuthMiddleware validates HS256 bearer tokens and stores the subject as the
// acting user. The reserved system resolver can never authenticate.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "MISSING_TOKEN", "Authorization header is required")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			abortUnauthorized(c, "INVALID_TOKEN_FORMAT", "Authorization header must be in format: Bearer <token>")
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(tokenParts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		subject := strings.TrimSpace(claims.Subject)
		if subject == "" || strings.EqualFold(subject, models.SystemResolver) {
			abortUnauthorized(c, "INVALID_CLAIMS", "Token subject is not a valid user")
			return
		}

		c.Set(ContextUserID, subject)
		c.Set("user_roles", claims.Roles)
		c.Next()
	}
}

// DevelopmentAuthMiddleware trusts the X-User-ID header for local work
func DevelopmentAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			userID = "U001"
		}
		if strings.EqualFold(userID, models.SystemResolver) {
			abortUnauthorized(c, "INVALID_USER", "X-User-ID must name a real user")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set("user_roles", []string{"admin"})
		c.Next()
	}
}

// UserID returns the authenticated user, or "" when no auth middleware ran
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
