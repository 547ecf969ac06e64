package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitracer/backend/internal/models"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "2019110042", models.RoleAlumni)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "2019110042", claims.Username)
	assert.Equal(t, models.RoleAlumni, claims.Role)
	assert.NotEmpty(t, claims.ID, "tokens need a JTI so logout can revoke them")
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "admin", models.RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("secret", 1).Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUniqueTokenIDs(t *testing.T) {
	svc := NewJWTService("secret", 1)
	a, err := svc.Generate(uuid.New(), "u", models.RoleAdmin)
	require.NoError(t, err)
	b, err := svc.Generate(uuid.New(), "u", models.RoleAdmin)
	require.NoError(t, err)

	ca, err := svc.Validate(a)
	require.NoError(t, err)
	cb, err := svc.Validate(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}
