package layout

import (
	"context"
	"math"

	"datarepublican/charitygraph/internal/graph"
)

// GridName is the configuration name of the grid strategy.
const GridName = "grid"

// GridConfig holds the grid spacing. Spacing is measured between node
// centers in world units.
type GridConfig struct {
	Columns  int     `yaml:"columns" validate:"gte=1"`
	SpacingX float64 `yaml:"spacingX" validate:"gt=0"`
	SpacingY float64 `yaml:"spacingY" validate:"gt=0"`
}

// DefaultGridConfig returns four columns 350 apart and rows 250 apart.
func DefaultGridConfig() GridConfig {
	return GridConfig{Columns: 4, SpacingX: 350, SpacingY: 250}
}

// Grid is the deterministic strategy: nodes fill columns left to right,
// rows top to bottom, and the grid is centered in the viewport. The grid's
// horizontal extent always spans every column, so a short last row stays
// aligned with the rows above it.
type Grid struct {
	cfg GridConfig
}

// NewGrid creates a grid strategy. Non-positive settings use the defaults.
func NewGrid(cfg GridConfig) *Grid {
	def := DefaultGridConfig()
	if cfg.Columns < 1 {
		cfg.Columns = def.Columns
	}
	if cfg.SpacingX <= 0 {
		cfg.SpacingX = def.SpacingX
	}
	if cfg.SpacingY <= 0 {
		cfg.SpacingY = def.SpacingY
	}
	return &Grid{cfg: cfg}
}

func (g *Grid) Name() string { return GridName }

// ComputePositions places every node on its grid cell.
func (g *Grid) ComputePositions(ctx context.Context, nodes []graph.Node, edges []graph.Edge, width, height float64) (Positions, error) {
	return computeWith(ctx, g, 0, nodes, edges, width, height)
}

// Start pins every body to its cell. The returned run never ticks.
func (g *Grid) Start(arena *Arena, _ []graph.Edge, vp Viewport) Run {
	vp = vp.OrDefault()
	n := arena.Len()
	cols := g.cfg.Columns
	rows := int(math.Ceil(float64(n) / float64(cols)))

	gridWidth := g.cfg.SpacingX * float64(cols-1)
	gridHeight := g.cfg.SpacingY * float64(max(rows-1, 0))
	startX := (vp.Width - gridWidth) / 2
	startY := (vp.Height - gridHeight) / 2

	for i, b := range arena.Bodies() {
		row, col := i/cols, i%cols
		b.Fix(Point{
			X: startX + float64(col)*g.cfg.SpacingX,
			Y: startY + float64(row)*g.cfg.SpacingY,
		})
	}
	return staticRun{}
}

type staticRun struct{}

func (staticRun) Tick() bool             { return false }
func (staticRun) SetAlphaTarget(float64) {}
func (staticRun) ReleasesPins() bool     { return false }
