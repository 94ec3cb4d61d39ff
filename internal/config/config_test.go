package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDashboard_Defaults(t *testing.T) {
	t.Setenv("RTGSCOPE_API_URL", "")
	t.Setenv("RTGSCOPE_API_TOKEN", "")

	cfg, err := LoadDashboard()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Upstream.URL, "an explicitly empty variable overrides the default")
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.OTEL.Enabled)
}

func TestLoadDashboard_FromEnv(t *testing.T) {
	t.Setenv("RTGSCOPE_API_URL", "http://api.lab:8000/")
	t.Setenv("RTGSCOPE_API_TOKEN", "s3cret")
	t.Setenv("RTGSCOPE_OTEL_ENABLED", "true")

	cfg, err := LoadDashboard()
	require.NoError(t, err)

	assert.Equal(t, "http://api.lab:8000", cfg.Upstream.URL)
	assert.Equal(t, "s3cret", cfg.Upstream.Token)
	assert.True(t, cfg.OTEL.Enabled)
}

func TestLoadDashboard_InvalidBool(t *testing.T) {
	t.Setenv("RTGSCOPE_OTEL_ENABLED", "maybe")

	_, err := LoadDashboard()
	assert.Error(t, err)
}

func TestLoadAPI_DatabaseDefaultsToXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("RTGSCOPE_DATABASE_URL", "")

	cfg, err := LoadAPI()
	require.NoError(t, err)

	assert.Equal(t, "file:"+dir+"/rtgscope/rtgscope.db", cfg.Database.URL)
	assert.False(t, cfg.Database.IsRemote())
	assert.Equal(t, "changeme", cfg.Auth.SecretKey)
}

func TestDatabase_IsRemote(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"libsql://rtg.turso.io", true},
		{"https://rtg.turso.io", true},
		{"file:/tmp/rtg.db", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Database{URL: tt.url}.IsRemote())
		})
	}
}
