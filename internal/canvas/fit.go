package canvas

import (
	"math"

	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/render"
)

// FitTransform returns the view that centers every card in the viewport at
// no more than maxScale and no less than minScale. Without positions it
// scales by maxScale about the viewport center.
func FitTransform(ps layout.Positions, vp layout.Viewport, maxScale, minScale float64) layout.Transform {
	vp = vp.OrDefault()
	center := vp.Center()
	k := maxScale
	focus := center

	if b, ok := layout.Bounds(ps, render.CardWidth/2, render.CardHeight/2); ok {
		k = math.Min(k, math.Min(vp.Width/b.Width, vp.Height/b.Height))
		focus = layout.Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
	}
	if minScale > 0 {
		k = math.Max(k, minScale)
	}
	return layout.Transform{X: center.X - focus.X*k, Y: center.Y - focus.Y*k, K: k}
}
