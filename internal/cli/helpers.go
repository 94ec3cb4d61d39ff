package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/otel"
	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/logger"
	"github.com/emiliopalmerini/rtgscope/internal/ports"
)

// newMetrics returns an OTLP exporter, or a no-op one when metrics are off.
func newMetrics(ctx context.Context, cfg config.OTEL, lggr logger.Logger) ports.MetricsExporter {
	if !cfg.Enabled {
		return otel.NewNoOpExporter()
	}
	exp, err := otel.NewExporter(ctx, cfg)
	if err != nil {
		lggr.Warnw("metrics disabled", "err", err)
		return otel.NewNoOpExporter()
	}
	return exp
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
