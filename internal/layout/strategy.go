package layout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"datarepublican/charitygraph/internal/graph"
)

// ErrUnknownStrategy is returned by Lookup for an unrecognized name.
var ErrUnknownStrategy = errors.New("layout: unknown strategy")

// Strategy is a layout policy.
type Strategy interface {
	// Name identifies the strategy in configuration and metrics.
	Name() string

	// ComputePositions lays out the nodes to completion and returns their
	// coordinates. Zero viewport dimensions fall back to the default size.
	ComputePositions(ctx context.Context, nodes []graph.Node, edges []graph.Edge, width, height float64) (Positions, error)

	// Start places every body of the arena and returns the incremental
	// run used by an interactive view.
	Start(arena *Arena, edges []graph.Edge, vp Viewport) Run
}

// Run is an in-progress layout owned by one mounted view.
type Run interface {
	// Tick advances one iteration and reports whether another is needed.
	Tick() bool

	// SetAlphaTarget changes the energy the run relaxes toward. Dragging
	// raises it so neighbors react; releasing lowers it back to zero.
	SetAlphaTarget(target float64)

	// ReleasesPins reports whether drag pins are temporary. Static layouts
	// keep every position fixed.
	ReleasesPins() bool
}

// relax drives run until it settles, ctx is cancelled, or the deadline
// passes. Cancellation is reported; hitting the deadline is not.
func relax(ctx context.Context, run Run, deadline time.Duration) error {
	var stop <-chan time.Time
	if deadline > 0 {
		timer := time.NewTimer(deadline)
		defer timer.Stop()
		stop = timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("layout cancelled: %w", ctx.Err())
		case <-stop:
			return nil
		default:
		}
		if !run.Tick() {
			return nil
		}
	}
}

func computeWith(ctx context.Context, s Strategy, deadline time.Duration, nodes []graph.Node, edges []graph.Edge, width, height float64) (Positions, error) {
	arena := NewArena(nodes)
	run := s.Start(arena, edges, Viewport{Width: width, Height: height}.OrDefault())
	if err := relax(ctx, run, deadline); err != nil {
		return nil, err
	}
	return arena.Positions(), nil
}

// Lookup returns a strategy with default settings by name.
func Lookup(name string) (Strategy, error) {
	switch name {
	case "", GridName:
		return NewGrid(DefaultGridConfig()), nil
	case SimulationName:
		return NewSimulation(DefaultSimulationConfig()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
