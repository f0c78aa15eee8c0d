package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/assessment-api/internal/config"
	"github.com/yukikurage/assessment-api/internal/models"
)

func newTestTokenService(secret string) *TokenService {
	return NewTokenService(config.AuthConfig{JWTSecret: secret, AccessTokenTTL: time.Hour})
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestTokenService("secret")

	token, expiresAt, err := svc.GenerateAccessToken(models.User{ID: 42, GlobalRole: models.GlobalRoleSuperAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, models.GlobalRoleSuperAdmin, claims.GlobalRole)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := newTestTokenService("secret")
	token, _, err := svc.GenerateAccessToken(models.User{ID: 1, GlobalRole: models.GlobalRoleUser})
	require.NoError(t, err)

	_, err = newTestTokenService("other-secret").ValidateToken(token)
	assert.Error(t, err)

	expired := newTestTokenService("secret")
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}
