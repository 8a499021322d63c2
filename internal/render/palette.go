package render

import (
	"fmt"

	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/route"
)

// Swatch is the color pair of one category. Fill is drawn translucent
// over the card background; Stroke is the card outline.
type Swatch struct {
	R, G, B uint8
	Stroke  string
}

// FillRGBA renders the fill at the given opacity.
func (s Swatch) FillRGBA(opacity float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", s.R, s.G, s.B, route.Num(opacity))
}

var palette = map[graph.Category]Swatch{
	graph.High:   {R: 255, G: 68, B: 68, Stroke: "#ff4444"},
	graph.Medium: {R: 255, G: 187, B: 51, Stroke: "#ffbb33"},
	graph.Low:    {R: 153, G: 153, B: 153, Stroke: "#999999"},
}

// SwatchFor returns the colors of a category. Unknown categories use the
// low swatch.
func SwatchFor(c graph.Category) Swatch {
	if s, ok := palette[c]; ok {
		return s
	}
	return palette[graph.Low]
}

// Fixed colors of the card text and canvas.
const (
	Background  = "#1f2937"
	TextColor   = "#fff"
	MutedColor  = "#999"
	AlertColor  = "#ff4444"
	AlertBanner = "rgba(255, 68, 68, 0.1)"
	AlertText   = "⚠️ High Taxpayer Funds"
)
