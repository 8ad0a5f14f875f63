package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackviz/internal/server"
	"github.com/matzehuels/trackviz/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		src       string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve charts over HTTP",
		Long: `Start the HTTP server. "/" charts the configured source; uploaded
tables are charted by POST /api/charts and kept in the cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config
			setIf(&cfg.Addr, addr)
			setIf(&cfg.Source, src)
			if noMetrics {
				cfg.Metrics = false
			}

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := []server.Option{
				server.WithLogger(c.Logger),
				server.WithChartTTL(cfg.CacheTTL),
			}
			if cfg.Metrics {
				prom := observability.NewPrometheusHooks()
				prom.Install()
				defer observability.Reset()
				opts = append(opts, server.WithMetrics(prom))
			}

			printInfo("Serving %s on %s", cfg.Source, cfg.Addr)
			return server.New(runner, cfg.PipelineOptions(), opts...).Run(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&src, "source", "", "table charted at /")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	return cmd
}
