package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyghar/easyghar-backend/internal/utils"
)

func TestSignJWT_RoundTrip(t *testing.T) {
	token, err := utils.SignJWT("test-secret", 42, "worker", 60)
	require.NoError(t, err)

	claims, err := utils.ParseJWT("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "worker", claims.Role)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := utils.SignJWT("test-secret", 1, "customer", 60)
	require.NoError(t, err)

	_, err = utils.ParseJWT("other-secret", token)
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	token, err := utils.SignJWT("test-secret", 1, "customer", -1)
	require.NoError(t, err)

	_, err = utils.ParseJWT("test-secret", token)
	assert.Error(t, err)
}

func TestParseJWT_Garbage(t *testing.T) {
	_, err := utils.ParseJWT("test-secret", "definitely.not.a.token")
	assert.Error(t, err)
}
