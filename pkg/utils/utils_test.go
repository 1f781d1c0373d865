package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHash(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	h, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", h)
	assert.True(t, CheckPassword("secret", h))
	assert.False(t, CheckPassword("Secret", h))
}

func TestNewIDUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
