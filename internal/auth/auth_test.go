package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPin(t *testing.T) {
	hash, err := HashPin("4711")
	require.NoError(t, err)
	assert.NotEqual(t, "4711", hash)
	assert.True(t, VerifyPin("4711", hash))
	assert.False(t, VerifyPin("0000", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.IssueToken(7, "alice")
	require.NoError(t, err)

	sess, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.TraderID)
	assert.Equal(t, "alice", sess.Name)
}

func TestVerifyToken_RejectsTamperedAndExpired(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, err := m.IssueToken(7, "alice")
	require.NoError(t, err)

	_, err = m.VerifyToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager("other-secret", time.Hour)
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewManager("test-secret", -time.Minute)
	tok, err := expired.IssueToken(7, "alice")
	require.NoError(t, err)
	_, err = expired.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionCookie(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	c := m.SessionCookie("tok")
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)

	cleared := ClearCookie()
	assert.Equal(t, -1, cleared.MaxAge)
}
