package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetXDGDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	dir, err := GetXDGDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "rtgscope"), dir)

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/alice")

	dir, err = GetXDGDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/alice", ".local", "share", "rtgscope"), dir)
}

func TestGetXDGDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	p, err := GetXDGDataPath("rtgscope.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "rtgscope", "rtgscope.db"), p)
}
