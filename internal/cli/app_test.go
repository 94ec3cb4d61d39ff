package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/otel"
	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/logger"
)

func TestAppContextClose_NilDB(t *testing.T) {
	a := &AppContext{}
	assert.NoError(t, a.Close())
}

func TestNewAppContext_RemoteRequiresToken(t *testing.T) {
	_, err := NewAppContext(context.Background(), config.Database{URL: "libsql://example.turso.io"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RTGSCOPE_DATABASE_AUTH_TOKEN")
}

func TestNewMetrics_FallsBackToNoOp(t *testing.T) {
	ctx := context.Background()

	assert.IsType(t, &otel.NoOpExporter{}, newMetrics(ctx, config.OTEL{}, logger.Test(t)))
	assert.IsType(t, &otel.NoOpExporter{}, newMetrics(ctx, config.OTEL{Enabled: true}, logger.Test(t)))
}
