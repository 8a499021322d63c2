package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"datarepublican/charitygraph/internal/canvas"
	"datarepublican/charitygraph/internal/dataset"
	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/metrics"
	"datarepublican/charitygraph/internal/server"
	"datarepublican/charitygraph/internal/watch"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive graph over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if cmd.Flags().Changed("watch") {
			cfg.Dataset.Watch = serveWatch
		}

		src, err := loadSource()
		if err != nil {
			return err
		}
		defer src.Close()

		strategy, err := cfg.Layout.Build()
		if err != nil {
			return err
		}
		col := metrics.NewCollector("charitygraph")

		factory := func(onSelect func(graph.Node)) *canvas.Canvas {
			return canvas.New(canvas.Options{
				Strategy:    strategy,
				Interaction: cfg.Interaction,
				FitScale:    cfg.View.FitScale,
				ArcFactor:   cfg.View.ArcFactor,
				WrapWidth:   cfg.View.WrapWidth,
				Legend:      cfg.View.Legend,
				Logger:      logger,
				Metrics:     col,
				OnSelect:    onSelect,
			})
		}
		hub := server.NewHub(factory, layout.Viewport{Width: cfg.View.Width, Height: cfg.View.Height}, col, logger)
		defer hub.Close()
		if err := hub.Replace(src.Nodes, src.Edges); err != nil {
			logger.Warn("Serving the valid part of the graph", zap.Error(err))
		}

		opts := []server.Option{server.WithMetrics(col, col.Handler())}
		if src.DB != nil {
			opts = append(opts, server.WithSearcher(src.DB))
		}
		srv := server.New(cfg.Server, hub, logger, opts...)

		var watcher *watch.Watcher
		if cfg.Dataset.Watch && cfg.Dataset.Path != "" {
			path := cfg.Dataset.Path
			watcher, err = watch.New(path, watch.DefaultDelay, func() { reloadDataset(hub, path) }, logger)
			if err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error { return srv.Run(ctx) })
		if watcher != nil {
			g.Go(func() error { return watcher.Run(ctx) })
		}
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the dataset file when it changes")
	rootCmd.AddCommand(serveCmd)
}

// reloadDataset replaces the served graph. A file that fails to load keeps
// the previous graph on screen.
func reloadDataset(hub *server.Hub, path string) {
	ds, err := dataset.Load(path)
	if err != nil {
		logger.Error("Reloading dataset", zap.String("path", path), zap.Error(err))
		return
	}
	if err := hub.Replace(ds.Nodes, ds.Links); err != nil {
		logger.Warn("Reloaded dataset has integrity problems", zap.Error(err))
	}
}

