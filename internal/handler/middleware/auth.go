package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"volunteer-slots/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthMiddleware verifies bearer tokens issued by the external identity
// provider. The token's subject is the volunteer id; the boolean `admin`
// claim is taken as a verified fact, this service performs no role logic
// of its own.
type AuthMiddleware struct {
	secret []byte
}

const (
	ctxVolunteerIDKey = "volunteer_id"
	ctxIsAdminKey     = "is_admin"
)

func NewAuthMiddleware(cfg config.AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(cfg.JWTSecret)}
}

type identityClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		volunteerID, isAdmin, err := m.validate(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxVolunteerIDKey, volunteerID)
		c.Set(ctxIsAdminKey, isAdmin)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin privileges required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) validate(tokenString string) (uuid.UUID, bool, error) {
	var claims identityClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	if !token.Valid {
		return uuid.Nil, false, jwt.ErrTokenUnverifiable
	}

	volunteerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, false, err
	}
	return volunteerID, claims.Admin, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

func GetVolunteerID(c *gin.Context) (uuid.UUID, bool) {
	volunteerID, exists := c.Get(ctxVolunteerIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := volunteerID.(uuid.UUID)
	return id, ok
}

func IsAdmin(c *gin.Context) bool {
	isAdmin, exists := c.Get(ctxIsAdminKey)
	if !exists {
		return false
	}

	admin, ok := isAdmin.(bool)
	return ok && admin
}
