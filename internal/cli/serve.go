package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/upstream"
	"github.com/emiliopalmerini/rtgscope/internal/auth"
	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/dashboard"
	"github.com/emiliopalmerini/rtgscope/internal/logger"
	"github.com/emiliopalmerini/rtgscope/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the experiments dashboard",
	Long: `Start the experiments dashboard.

The dashboard fetches the experiments listing once, from RTGSCOPE_API_URL,
authenticating with RTGSCOPE_API_TOKEN.

Examples:
  rtgscope serve                  # Dashboard on port 8080
  rtgscope serve --port 3000      # Dashboard on port 3000
  rtgscope serve --api            # Also serve the experiments API on port 8000`,
	RunE: runServe,
}

var (
	servePort    int
	serveWithAPI bool
	serveAPIPort int
	servePoll    time.Duration
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the experiments API",
	Long: `Serve GET /experiments from the experiments database.

Requests need a bearer token with the admin role; mint one with
"rtgscope token --sub <name> --role admin".`,
	RunE: runAPI,
}

var apiPort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveWithAPI, "api", false, "Also serve the experiments API")
	serveCmd.Flags().IntVar(&serveAPIPort, "api-port", 8000, "Port for the experiments API")
	serveCmd.Flags().DurationVar(&servePoll, "poll", 2*time.Second, "How often an unloaded table refreshes")

	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().IntVarP(&apiPort, "port", "p", 8000, "Port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadDashboard()
	if err != nil {
		return err
	}
	lggr, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	metrics := newMetrics(ctx, cfg.OTEL, lggr)
	defer func() { _ = metrics.Close(context.Background()) }()

	view := dashboard.NewView(
		upstream.NewClient(cfg.Upstream),
		dashboard.WithLogger(lggr.Named("dashboard")),
		dashboard.WithMetrics(metrics),
	)
	dashboardServer := web.NewDashboardServer(servePort, view,
		web.WithLogger(lggr.Named("web")),
		web.WithMetrics(metrics),
		web.WithPollInterval(servePoll),
	)

	var apiServer *web.Server
	if serveWithAPI {
		apiCfg, err := config.LoadAPI()
		if err != nil {
			return err
		}
		var closeAPI func()
		apiServer, closeAPI, err = newAPIServer(ctx, serveAPIPort, apiCfg, lggr)
		if err != nil {
			return err
		}
		defer closeAPI()
	}

	return serveAll(ctx, dashboardServer, apiServer)
}

// serveAll runs the dashboard and, when api is set, the experiments API. The
// API port is bound before the dashboard mounts so its one load can connect.
func serveAll(ctx context.Context, dashboardServer, apiServer *web.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	if apiServer != nil {
		ln, err := apiServer.Listen()
		if err != nil {
			return err
		}
		g.Go(func() error { return apiServer.Serve(gctx, ln) })
	}
	g.Go(func() error { return dashboardServer.Start(gctx) })

	return g.Wait()
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAPI()
	if err != nil {
		return err
	}
	lggr, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	server, closeAPI, err := newAPIServer(ctx, apiPort, cfg, lggr)
	if err != nil {
		return err
	}
	defer closeAPI()

	return server.Start(ctx)
}

// newAPIServer wires the experiments API to its database. The returned func
// closes the database and flushes metrics.
func newAPIServer(ctx context.Context, port int, cfg *config.API, lggr logger.Logger) (*web.Server, func(), error) {
	if cfg.Auth.SecretKey == "changeme" {
		lggr.Warnw("RTGSCOPE_SECRET_KEY is the default, tokens are forgeable")
	}

	app, err := NewAppContext(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	metrics := newMetrics(ctx, cfg.OTEL, lggr)

	server := web.NewAPIServer(port, app.Repos.Experiments, auth.NewAuthenticator(cfg.Auth.SecretKey),
		web.WithLogger(lggr.Named("api")),
		web.WithMetrics(metrics),
	)
	closeFn := func() {
		_ = metrics.Close(context.Background())
		if err := app.Close(); err != nil {
			lggr.Warnw("failed to close database", "err", err)
		}
	}
	return server, closeFn, nil
}
