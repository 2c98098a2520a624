package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}

	token, err := m.Issue(user)
	require.NoError(t, err)

	actor, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, user.Email, actor.Email)
	assert.True(t, actor.IsAdmin())
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute)
	token, err := m.Issue(&models.User{ID: uuid.New(), Role: models.RoleCitizen})
	require.NoError(t, err)

	_, err = m.Parse(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Issue(&models.User{ID: uuid.New(), Role: models.RoleCitizen})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: uuid.NewString(), Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_UnknownRoleIsCitizen(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(&models.User{ID: uuid.New(), Role: "superuser"})
	require.NoError(t, err)

	actor, err := m.Parse(token)

	require.NoError(t, err)
	assert.Equal(t, models.RoleCitizen, actor.Role)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-Pass")
	require.NoError(t, err)

	assert.True(t, CheckPassword("s3cret-Pass", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
