package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/internal/server"
	"github.com/matzehuels/framecraft/pkg/cache"
	"github.com/matzehuels/framecraft/pkg/httputil"
	"github.com/matzehuels/framecraft/pkg/media"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the template API over HTTP",
		Long: `Serve the template API over HTTP.

Templates are kept in the configured store. Image sizes for POST /fit are
read through the configured cache, which is pruned on the configured
schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			loader, err := c.newAPILoader(ctx, noCache)
			if err != nil {
				return err
			}
			defer loader.Close()

			opts := server.Options{
				Store:         st,
				Prober:        loader,
				Cache:         loader.Cache,
				Keyer:         loader.Keyer,
				FetchTimeout:  cfg.Server.FetchTimeout.Duration,
				PruneSchedule: cfg.Server.PruneSchedule,
				Logger:        c.Logger,
			}
			if fc, ok := loader.Cache.(*cache.FileCache); ok {
				opts.Pruner = fc
			}

			srv, err := server.New(opts)
			if err != nil {
				return err
			}
			c.Logger.Info("serving templates", "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// newAPILoader returns the loader behind POST /fit. Sources come from API
// callers, so local files are refused, and so are internal hosts unless
// the config allows them.
func (c *CLI) newAPILoader(ctx context.Context, noCache bool) (*media.Loader, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	l, err := c.newLoader(ctx, noCache, "")
	if err != nil {
		return nil, err
	}
	l.RemoteOnly = true
	if !cfg.Server.AllowPrivateFetch {
		l.Client = httputil.NewPublicClient(media.DefaultTimeout)
	}
	return l, nil
}
