package route

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datarepublican/charitygraph/internal/layout"
)

func TestRoute_HorizontalArc(t *testing.T) {
	a := Route(layout.Point{X: 0, Y: 0}, layout.Point{X: 100, Y: 0}, 1.5)

	require.False(t, a.Straight)
	assert.Equal(t, 150.0, a.Radius)
	assert.Equal(t, "M0,0 A150,150 0 0,1 100,0", a.Path())
	assert.Equal(t, 0.0, a.Angle)

	// sagitta of a 100-wide chord on a radius-150 circle, bulging upward
	assert.InDelta(t, 50, a.Mid.X, 1e-9)
	assert.InDelta(t, -(150 - math.Sqrt(150*150-50*50)), a.Mid.Y, 1e-9)

	// the tangent at the end turns by asin(half chord / radius)
	assert.InDelta(t, math.Asin(50.0/150)*180/math.Pi, a.EndAngle, 1e-9)
}

func TestRoute_MidpointIsOnArc(t *testing.T) {
	src := layout.Point{X: 120, Y: -40}
	dst := layout.Point{X: -310, Y: 275}
	a := Route(src, dst, DefaultArcFactor)

	assert.InDelta(t, a.Mid.Dist(src), a.Mid.Dist(dst), 1e-6, "midpoint is equidistant from both ends")

	// recover the center from the chord and check Mid lies on the circle
	d := src.Dist(dst)
	h := math.Sqrt(a.Radius*a.Radius - d*d/4)
	n := layout.Point{X: -(dst.Y - src.Y) / d, Y: (dst.X - src.X) / d}
	center := layout.Point{X: (src.X+dst.X)/2 + n.X*h, Y: (src.Y+dst.Y)/2 + n.Y*h}
	assert.InDelta(t, a.Radius, a.Mid.Dist(center), 1e-6)
	assert.InDelta(t, a.Radius, dst.Dist(center), 1e-6)
}

func TestRoute_OppositeEdgesBulgeApart(t *testing.T) {
	p := layout.Point{X: 0, Y: 0}
	q := layout.Point{X: 0, Y: 200}
	there := Route(p, q, DefaultArcFactor)
	back := Route(q, p, DefaultArcFactor)

	assert.Greater(t, there.Mid.X, 0.0)
	assert.Less(t, back.Mid.X, 0.0)
	assert.InDelta(t, 90, there.Angle, 1e-9)
	assert.InDelta(t, -90, back.Angle, 1e-9)
}

func TestRoute_CoincidentEndpoints(t *testing.T) {
	p := layout.Point{X: 10, Y: 20}
	a := Route(p, p, DefaultArcFactor)

	assert.True(t, a.Straight)
	assert.Equal(t, p, a.Mid)
	assert.Equal(t, "M10,20 L10,20", a.Path())
}

func TestRoute_DefaultFactor(t *testing.T) {
	a := Route(layout.Point{}, layout.Point{X: 10}, 0)
	assert.Equal(t, 15.0, a.Radius)
}

func TestLabelTransform(t *testing.T) {
	a := Route(layout.Point{X: 0, Y: 0}, layout.Point{X: 100, Y: 100}, DefaultArcFactor)
	assert.Contains(t, a.LabelTransform(), "rotate(45)")
	assert.Regexp(t, `^translate\(-?[\d.]+,-?[\d.]+\) rotate\(45\)$`, a.LabelTransform())
}

func TestNum(t *testing.T) {
	cases := map[float64]string{
		0:        "0",
		-0.0001:  "0",
		1.5:      "1.5",
		2.345678: "2.35",
		-12.004:  "-12",
		1000000:  "1000000",
	}
	for in, want := range cases {
		assert.Equal(t, want, Num(in), "Num(%v)", in)
	}
}

func TestArrowMarker(t *testing.T) {
	m := ArrowMarker()
	assert.Equal(t, "-10 -10 20 20", m.ViewBox)
	assert.Equal(t, 35.0, m.RefX)
	assert.Equal(t, "auto", m.Orient)
	assert.Equal(t, "url(#arrowhead)", m.URL())
}
