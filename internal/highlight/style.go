package highlight

// NodeStyle holds the opacity and stroke settings of a node card. Category
// color is applied by the renderer and is the same at every emphasis.
type NodeStyle struct {
	FillOpacity   float64
	StrokeOpacity float64
	StrokeWidth   float64
	TextOpacity   float64
}

// EdgeStyle holds the opacity and stroke settings of an edge and its label.
type EdgeStyle struct {
	StrokeOpacity float64
	StrokeWidth   float64
	LabelOpacity  float64
}

var nodeStyles = map[Emphasis]NodeStyle{
	Baseline: {FillOpacity: 0.1, StrokeOpacity: 1, StrokeWidth: 1, TextOpacity: 1},
	Full:     {FillOpacity: 0.1, StrokeOpacity: 1, StrokeWidth: 2, TextOpacity: 1},
	Dim:      {FillOpacity: 0.02, StrokeOpacity: 0.3, StrokeWidth: 1, TextOpacity: 0.3},
}

var edgeStyles = map[Emphasis]EdgeStyle{
	Baseline: {StrokeOpacity: 0.4, StrokeWidth: 1.5, LabelOpacity: 0.8},
	Full:     {StrokeOpacity: 0.8, StrokeWidth: 2.5, LabelOpacity: 1},
	Dim:      {StrokeOpacity: 0.1, StrokeWidth: 1, LabelOpacity: 0.1},
}

// NodeStyleFor maps an emphasis to card styling.
func NodeStyleFor(e Emphasis) NodeStyle { return nodeStyles[e] }

// EdgeStyleFor maps an emphasis to edge styling.
func EdgeStyleFor(e Emphasis) EdgeStyle { return edgeStyles[e] }
