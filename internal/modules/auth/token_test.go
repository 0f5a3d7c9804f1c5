package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret")
	userID := uuid.New()

	signed, err := tokens.Issue(userID, false)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.False(t, claims.Admin)
}

func TestTokenCarriesAdminFlag(t *testing.T) {
	tokens := NewTokens("test-secret")

	signed, err := tokens.Issue(uuid.New(), true)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestTokenWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-a").Issue(uuid.New(), false)
	require.NoError(t, err)

	_, err = NewTokens("secret-b").Parse(signed)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	tokens := NewTokens("test-secret")
	_, err := tokens.Parse("definitely.not.a.token")
	assert.Error(t, err)
}
