//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"volunteer-slots/internal/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// JWTHelper mints tokens the way the external identity provider would:
// HS256, subject = volunteer id, boolean `admin` claim.
type JWTHelper struct {
	cfg config.AuthConfig
}

func NewJWTHelper(cfg config.AuthConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, volunteerID uuid.UUID, admin bool) string {
	t.Helper()
	return h.signToken(t, volunteerID, admin, time.Now().Add(time.Hour))
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, volunteerID uuid.UUID, admin bool) string {
	t.Helper()
	return h.signToken(t, volunteerID, admin, time.Now().Add(-time.Hour))
}

func (h *JWTHelper) signToken(t *testing.T, volunteerID uuid.UUID, admin bool, expiresAt time.Time) string {
	t.Helper()

	claims := struct {
		Admin bool `json:"admin"`
		jwt.RegisteredClaims
	}{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   volunteerID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	require.NoError(t, err)
	return token
}
