package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("pw12345", 4)
	require.NoError(t, err)

	assert.NotEqual(t, "pw12345", hash)
	assert.True(t, CheckPassword(hash, "pw12345"))
	assert.False(t, CheckPassword(hash, "pw12346"))
}

func TestHashPassword_SaltsEachHash(t *testing.T) {
	h1, err := HashPassword("pw12345", 4)
	require.NoError(t, err)
	h2, err := HashPassword("pw12345", 4)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashPassword_ClampsInvalidCost(t *testing.T) {
	hash, err := HashPassword("pw12345", 99)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "pw12345"))
}
