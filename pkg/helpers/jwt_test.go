package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	tok, exp, err := m.GenerateAccessToken("u-1", "s-1", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "s-1", claims.SessionID)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTManager_RejectsWrongSecretAndExpired(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	refresh, _, err := m.GenerateRefreshToken("u-1", "s-1", "user")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(refresh)
	assert.Error(t, err, "refresh token must not pass as access token")

	expired := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	tok, _, err := expired.GenerateAccessToken("u-1", "s-1", "user")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}
