package layout

import "math"

// Default viewport used when the host reports a zero or negative size.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Point is a position in scene (world) coordinates unless stated otherwise.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist is the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Positions maps node ids to coordinates.
type Positions map[string]Point

// Viewport is the size of the drawing surface in screen pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OrDefault substitutes the default size for any dimension that is not a
// positive finite number.
func (v Viewport) OrDefault() Viewport {
	if !(v.Width > 0) || math.IsInf(v.Width, 0) {
		v.Width = DefaultWidth
	}
	if !(v.Height > 0) || math.IsInf(v.Height, 0) {
		v.Height = DefaultHeight
	}
	return v
}

// Center is the midpoint of the viewport.
func (v Viewport) Center() Point {
	return Point{v.Width / 2, v.Height / 2}
}

// Transform maps world coordinates to screen coordinates: screen = world*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to the screen.
func (t Transform) Apply(p Point) Point {
	return Point{p.X*t.K + t.X, p.Y*t.K + t.Y}
}

// Invert maps a screen point back to world coordinates.
func (t Transform) Invert(p Point) Point {
	return Point{(p.X - t.X) / t.K, (p.Y - t.Y) / t.K}
}

// ScaleAround returns t rescaled to k while keeping the world point under
// the screen point anchor fixed.
func (t Transform) ScaleAround(anchor Point, k float64) Transform {
	world := t.Invert(anchor)
	return Transform{X: anchor.X - world.X*k, Y: anchor.Y - world.Y*k, K: k}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Bounds returns the smallest rectangle holding every position, grown by
// pad on each side. ok is false when there are no positions.
func Bounds(ps Positions, padX, padY float64) (r Rect, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range ps {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if math.IsInf(minX, 1) {
		return Rect{}, false
	}
	return Rect{
		X:      minX - padX,
		Y:      minY - padY,
		Width:  maxX - minX + 2*padX,
		Height: maxY - minY + 2*padY,
	}, true
}
