package route

// Marker describes the arrowhead drawn at the end of every edge.
type Marker struct {
	ID      string
	ViewBox string
	RefX    float64
	RefY    float64
	Width   float64
	Height  float64
	Orient  string
	Path    string
	Fill    string
}

// EdgeColor is the stroke of edges, their labels and the arrowhead.
const EdgeColor = "#94a3b8"

// ArrowMarker returns the shared arrowhead. RefX pushes the tip back from
// the target center so it stops short of the node card.
func ArrowMarker() Marker {
	return Marker{
		ID:      "arrowhead",
		ViewBox: "-10 -10 20 20",
		RefX:    35,
		RefY:    0,
		Width:   20,
		Height:  20,
		Orient:  "auto",
		Path:    "M-6.75,-6.75 L 0,0 L -6.75,6.75",
		Fill:    EdgeColor,
	}
}

// URL is the reference used by marker-end attributes.
func (m Marker) URL() string { return "url(#" + m.ID + ")" }
