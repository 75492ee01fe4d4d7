package auth

import (
	"testing"
	"time"

	"stayfinder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue(&models.User{ID: 42, Role: models.RoleSeller})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleSeller, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	m.ttl = -time.Minute

	token, err := m.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
