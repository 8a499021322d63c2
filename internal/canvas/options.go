package canvas

import (
	"time"

	"go.uber.org/zap"

	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/interact"
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/render"
	"datarepublican/charitygraph/internal/route"
)

// DefaultFitScale is the largest scale of the initial view.
const DefaultFitScale = 0.5

// DefaultDragAlphaTarget is the energy a live layout is held at while a
// node is being dragged.
const DefaultDragAlphaTarget = 0.3

// Recorder receives instrumentation events. *metrics.Collector satisfies it.
type Recorder interface {
	ObserveLayout(strategy string, d time.Duration)
	IncTicks(strategy string)
	ObserveRender(format string, d time.Duration)
	IncExports()
	AddIntegrityErrors(kind string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLayout(string, time.Duration) {}
func (nopRecorder) IncTicks(string)                     {}
func (nopRecorder) ObserveRender(string, time.Duration) {}
func (nopRecorder) IncExports()                         {}
func (nopRecorder) AddIntegrityErrors(string, int)      {}

// Options configures a Canvas. Zero values select the defaults.
type Options struct {
	Strategy        layout.Strategy
	Driver          layout.Driver
	Clock           interact.Clock
	Interaction     interact.Config
	FitScale        float64
	DragAlphaTarget float64
	ArcFactor       float64
	WrapWidth       int
	Legend          bool
	Logger          *zap.Logger
	Metrics         Recorder

	// OnSelect is called with a copy of the selected record, outside the
	// canvas lock. It is not called when the selection is cleared.
	OnSelect func(graph.Node)
}

func (o Options) withDefaults() Options {
	if o.Strategy == nil {
		o.Strategy = layout.NewGrid(layout.DefaultGridConfig())
	}
	if o.Driver == nil {
		o.Driver = layout.TickerDriver{}
	}
	if o.Clock == nil {
		o.Clock = interact.SystemClock
	}
	if o.Interaction == (interact.Config{}) {
		o.Interaction = interact.DefaultConfig()
	}
	if !(o.FitScale > 0) {
		o.FitScale = DefaultFitScale
	}
	if !(o.DragAlphaTarget > 0) {
		o.DragAlphaTarget = DefaultDragAlphaTarget
	}
	if !(o.ArcFactor > 0) {
		o.ArcFactor = route.DefaultArcFactor
	}
	if o.WrapWidth <= 0 {
		o.WrapWidth = render.DefaultWrapWidth
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Metrics == nil {
		o.Metrics = nopRecorder{}
	}
	return o
}
