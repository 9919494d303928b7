package authsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtutil "github.com/arzeeee/libloan/util/jwt"
)

func TestToken(t *testing.T) {
	s := New("admin-key", "test-secret")

	tok, err := s.Token("admin-key")
	require.NoError(t, err)

	claims, err := jwtutil.ParseAuth("Bearer "+tok, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "staff", claims["sub"])
	assert.Equal(t, "staff", claims["role"])
}

func TestTokenWrongKey(t *testing.T) {
	s := New("admin-key", "test-secret")

	_, err := s.Token("wrong")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestTokenUnconfigured(t *testing.T) {
	// With no admin key set, no input can mint a token.
	s := New("", "test-secret")

	_, err := s.Token("")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
