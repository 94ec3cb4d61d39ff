package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_IssueAndParse(t *testing.T) {
	a := NewAuthenticator("s3cret")

	token, err := a.Issue("alice", RoleAdmin, time.Hour)
	require.NoError(t, err)

	user, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsAdmin())
}

func TestAuthenticator_DefaultsToStudent(t *testing.T) {
	a := NewAuthenticator("s3cret")

	token, err := a.Issue("bob", "", 0)
	require.NoError(t, err)

	user, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, user.Role)
	assert.False(t, user.IsAdmin())
}

func TestAuthenticator_Rejects(t *testing.T) {
	a := NewAuthenticator("s3cret")

	wrongKey, err := NewAuthenticator("other").Issue("alice", RoleAdmin, time.Hour)
	require.NoError(t, err)

	expired, err := a.Issue("alice", RoleAdmin, time.Minute)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "eve", "role": "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	later := NewAuthenticator("s3cret")
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name  string
		a     *Authenticator
		token string
	}{
		{"garbage", a, "not-a-token"},
		{"empty", a, ""},
		{"wrong key", a, wrongKey},
		{"expired", later, expired},
		{"alg none", a, none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.a.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
