// Package route turns a pair of endpoint positions into the curved path,
// label placement and arrowhead orientation of a directed edge.
package route

import (
	"fmt"
	"math"
	"strconv"

	"datarepublican/charitygraph/internal/layout"
)

// DefaultArcFactor scales the chord length into the arc radius. Larger
// factors flatten the curve.
const DefaultArcFactor = 1.5

// LabelOffset lifts edge labels off the stroke, in world units.
const LabelOffset = -5

// Arc is the routed geometry of one edge. Both endpoints are node centers;
// the arrowhead marker backs itself off the card.
type Arc struct {
	Source layout.Point
	Target layout.Point
	Radius float64

	// Straight is set when the endpoints coincide and no circle can be
	// fitted. Path then degrades to a line segment.
	Straight bool

	// Mid is the point halfway along the arc, where the label is anchored.
	Mid layout.Point

	// Angle is the chord direction in degrees, used to rotate the label.
	Angle float64

	// EndAngle is the direction of travel at the target in degrees, which
	// is how an auto-oriented marker is drawn.
	EndAngle float64
}

// Route computes the arc from src to dst. The arc always bends to the left
// of the direction of travel in screen coordinates, so two opposite edges
// between the same nodes do not overlap. A non-positive factor uses
// DefaultArcFactor.
func Route(src, dst layout.Point, factor float64) Arc {
	if !(factor > 0) {
		factor = DefaultArcFactor
	}
	dx, dy := dst.X-src.X, dst.Y-src.Y
	d := math.Hypot(dx, dy)
	a := Arc{
		Source: src,
		Target: dst,
		Radius: d * factor,
		Angle:  degrees(math.Atan2(dy, dx)),
	}
	mid := layout.Point{X: (src.X + dst.X) / 2, Y: (src.Y + dst.Y) / 2}
	if d == 0 {
		a.Straight = true
		a.Mid = mid
		a.EndAngle = a.Angle
		return a
	}

	// Unit normal toward the circle center for a small arc with the
	// positive sweep flag.
	nx, ny := -dy/d, dx/d
	half := d / 2
	h := math.Sqrt(math.Max(a.Radius*a.Radius-half*half, 0))
	sagitta := a.Radius - h
	a.Mid = layout.Point{X: mid.X - nx*sagitta, Y: mid.Y - ny*sagitta}

	center := layout.Point{X: mid.X + nx*h, Y: mid.Y + ny*h}
	rv := dst.Sub(center)
	a.EndAngle = degrees(math.Atan2(rv.X, -rv.Y))
	return a
}

// Path renders the arc as SVG path data.
func (a Arc) Path() string {
	if a.Straight {
		return fmt.Sprintf("M%s,%s L%s,%s", Num(a.Source.X), Num(a.Source.Y), Num(a.Target.X), Num(a.Target.Y))
	}
	r := Num(a.Radius)
	return fmt.Sprintf("M%s,%s A%s,%s 0 0,1 %s,%s",
		Num(a.Source.X), Num(a.Source.Y), r, r, Num(a.Target.X), Num(a.Target.Y))
}

// LabelTransform places and rotates the edge label.
func (a Arc) LabelTransform() string {
	return fmt.Sprintf("translate(%s,%s) rotate(%s)", Num(a.Mid.X), Num(a.Mid.Y), Num(a.Angle))
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Num formats a coordinate with at most two decimals and no trailing zeros.
func Num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
