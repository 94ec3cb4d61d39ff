package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/rtgscope/internal/auth"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("RTGSCOPE_SECRET_KEY", "cli-secret")

	out, err := runCommand(t, "token", "--sub", "alice", "--role", "admin")
	require.NoError(t, err)

	user, err := auth.NewAuthenticator("cli-secret").Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsAdmin())
}

func TestTokenCommand_InvalidRole(t *testing.T) {
	_, err := runCommand(t, "token", "--sub", "alice", "--role", "root")
	tokenRole = auth.RoleStudent

	assert.ErrorContains(t, err, "invalid role")
}
