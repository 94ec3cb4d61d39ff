package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/rtgscope/internal/config"
)

// testApp opens a migrated database in a per-test temp directory.
func testApp(t *testing.T) *AppContext {
	t.Helper()

	app, err := NewAppContext(context.Background(), config.Database{
		URL: "file:" + filepath.Join(t.TempDir(), "cli.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// runCommand executes the root command with args and returns its stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
