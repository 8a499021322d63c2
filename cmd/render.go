package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datarepublican/charitygraph/internal/canvas"
	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/highlight"
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/render"
)

var (
	renderOut       string
	renderWidth     float64
	renderHeight    float64
	renderLayout    string
	renderSelect    string
	renderIDs       []string
	renderSearch    string
	renderNeighbors bool
	renderNoLegend  bool
	renderTimeout   time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Lay out the graph and write it as an SVG file",
	Long: `Lays out the graph headlessly and exports the fitted view as SVG.

--ids and --search narrow the graph to the matching charities; --neighbors
adds every charity one flow away from them. --select highlights a charity
and its neighbors in the output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := loadSource()
		if err != nil {
			return err
		}
		defer src.Close()

		snap, err := graph.NewSnapshot(src.Nodes, src.Edges)
		if err != nil {
			logger.Warn("Rendering the valid part of the graph", zap.Error(err))
		}
		snap, err = filterSnapshot(snap, src)
		if err != nil {
			return err
		}

		strategy, err := renderStrategy()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), renderTimeout)
		defer cancel()

		svg, err := renderSVG(ctx, snap, strategy)
		if err != nil {
			return err
		}

		if renderOut == "-" {
			_, err = cmd.OutOrStdout().Write(svg)
			return err
		}
		if err := os.WriteFile(renderOut, svg, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", renderOut, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d charities, %d flows)\n", renderOut, snap.Len(), len(snap.Edges))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", render.ExportFilename, "Output file, or - for stdout")
	renderCmd.Flags().Float64Var(&renderWidth, "width", 0, "Viewport width (default from config)")
	renderCmd.Flags().Float64Var(&renderHeight, "height", 0, "Viewport height (default from config)")
	renderCmd.Flags().StringVar(&renderLayout, "layout", "", "Layout strategy: grid or simulation (default from config)")
	renderCmd.Flags().StringVar(&renderSelect, "select", "", "Charity ID, EIN or name to highlight")
	renderCmd.Flags().StringSliceVar(&renderIDs, "ids", nil, "Only render these charities (IDs, EINs or names)")
	renderCmd.Flags().StringVar(&renderSearch, "search", "", "Only render charities matching this keyword search")
	renderCmd.Flags().BoolVar(&renderNeighbors, "neighbors", false, "Include charities one flow away from the filtered set")
	renderCmd.Flags().BoolVar(&renderNoLegend, "no-legend", false, "Leave the category legend out")
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", 30*time.Second, "Give up on layout after this long")
	rootCmd.AddCommand(renderCmd)
}

func renderStrategy() (layout.Strategy, error) {
	lc := cfg.Layout
	if renderLayout != "" {
		lc.Strategy = renderLayout
	}
	return lc.Build()
}

// filterSnapshot applies --ids, --search and --neighbors. Without filters
// the snapshot is returned unchanged.
func filterSnapshot(snap *graph.Snapshot, src *source) (*graph.Snapshot, error) {
	if len(renderIDs) == 0 && renderSearch == "" {
		return snap, nil
	}

	var ids []string
	for _, ref := range renderIDs {
		n, err := ResolveNode(snap, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, n.ID)
	}
	if renderSearch != "" {
		hits, err := searchIDs(snap, src, renderSearch)
		if err != nil {
			return nil, err
		}
		if len(hits) == 0 {
			return nil, fmt.Errorf("no charities match %q", renderSearch)
		}
		ids = append(ids, hits...)
	}

	if renderNeighbors {
		ids = highlight.Neighborhood(ids, snap.Edges).Sorted()
	}
	return snap.Subset(ids), nil
}

// searchIDs uses full-text search when the records came from the database.
func searchIDs(snap *graph.Snapshot, src *source, query string) ([]string, error) {
	if src.DB == nil {
		return snap.Search(query, 0), nil
	}
	hits, err := src.DB.SearchCharities(query, 0)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	ids := make([]string, 0, len(hits))
	for _, c := range hits {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// renderSVG mounts a headless canvas, waits for the layout to settle and
// exports it. A layout that runs out of time is exported as it stands.
func renderSVG(ctx context.Context, snap *graph.Snapshot, strategy layout.Strategy) ([]byte, error) {
	c := canvas.New(canvas.Options{
		Strategy:    strategy,
		Driver:      layout.BatchDriver{},
		Interaction: cfg.Interaction,
		FitScale:    cfg.View.FitScale,
		ArcFactor:   cfg.View.ArcFactor,
		WrapWidth:   cfg.View.WrapWidth,
		Legend:      cfg.View.Legend && !renderNoLegend,
		Logger:      logger,
	})
	_ = c.SetData(snap.Records(), snap.Edges)

	vp := layout.Viewport{Width: cfg.View.Width, Height: cfg.View.Height}
	if renderWidth > 0 {
		vp.Width = renderWidth
	}
	if renderHeight > 0 {
		vp.Height = renderHeight
	}
	c.Mount(ctx, vp)
	defer c.Unmount()

	if err := c.WaitSettled(ctx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("Layout did not settle in time, exporting current positions")
	}

	if renderSelect != "" {
		n, err := ResolveNode(snap, renderSelect)
		if err != nil {
			return nil, err
		}
		if err := c.Select(n.ID); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := c.Export(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
