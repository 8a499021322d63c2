// Package render composes positioned records into a drawable scene and
// serializes it as SVG.
package render

import (
	"math"

	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/highlight"
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/route"
)

// Card geometry in world units, relative to the node center.
const (
	CardWidth    = 260
	CardHeight   = 150
	CardRadius   = 5
	BannerHeight = 24
	LineHeight   = 14
	FieldSpacing = 20
)

// Scene is everything needed to draw one frame.
type Scene struct {
	Viewport  layout.Viewport  `json:"viewport"`
	Transform layout.Transform `json:"transform"`
	Selected  string           `json:"selected,omitempty"`
	Marker    route.Marker     `json:"-"`
	Edges     []EdgeVisual     `json:"edges"`
	Nodes     []NodeVisual     `json:"nodes"`
	Legend    []LegendEntry    `json:"legend,omitempty"`
}

// NodeVisual is one composed node card.
type NodeVisual struct {
	ID       string              `json:"id"`
	Category graph.Category      `json:"category"`
	Center   layout.Point        `json:"center"`
	Emphasis highlight.Emphasis  `json:"emphasis"`
	Style    highlight.NodeStyle `json:"style"`
	Fill     string              `json:"fill"`
	Stroke   string              `json:"stroke"`
	Banner   bool                `json:"banner"`
	Label    []string            `json:"label"`
	EIN      string              `json:"ein"`
	Fields   []FieldLine         `json:"fields"`
}

// TextOffset is where the label block starts relative to the center. The
// banner pushes it down on high cards.
func (n NodeVisual) TextOffset() layout.Point {
	if n.Banner {
		return layout.Point{X: -120, Y: -35}
	}
	return layout.Point{X: -120, Y: -45}
}

// EINOffset is the baseline of the identifier line inside the text block.
// Labels longer than two lines push it and the fields below it down.
func (n NodeVisual) EINOffset() float64 {
	lines := max(len(n.Label), 1)
	return math.Max(30, float64(lines-1)*LineHeight+16)
}

// FieldLine is one financial row on a card.
type FieldLine struct {
	Caption    string `json:"caption"`
	Value      string `json:"value"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// Text is the row as displayed.
func (f FieldLine) Text() string { return f.Caption + " " + f.Value }

// EdgeVisual is one routed and styled edge.
type EdgeVisual struct {
	Source   string              `json:"source"`
	Target   string              `json:"target"`
	Arc      route.Arc           `json:"-"`
	Path     string              `json:"path"`
	Label    string              `json:"label"`
	Emphasis highlight.Emphasis  `json:"emphasis"`
	Style    highlight.EdgeStyle `json:"style"`

	// ArrowAngle is the heading of the arc at the target in degrees, for
	// clients that draw their own arrowheads.
	ArrowAngle float64 `json:"arrowAngle"`
}

// LegendEntry explains one category color.
type LegendEntry struct {
	Category graph.Category `json:"category"`
	Caption  string         `json:"caption"`
	Stroke   string         `json:"stroke"`
}

// Legend lists the categories with their thresholds.
func Legend() []LegendEntry {
	return []LegendEntry{
		{Category: graph.High, Caption: "High Taxpayer Funds (>$10M)", Stroke: SwatchFor(graph.High).Stroke},
		{Category: graph.Medium, Caption: "Medium Taxpayer Funds ($1M-$10M)", Stroke: SwatchFor(graph.Medium).Stroke},
		{Category: graph.Low, Caption: "Low/No Taxpayer Funds", Stroke: SwatchFor(graph.Low).Stroke},
	}
}

// Input collects the products of every earlier stage of a render cycle.
type Input struct {
	Nodes     []*graph.Node
	Edges     []graph.Edge
	Positions layout.Positions
	Highlight highlight.State
	Viewport  layout.Viewport
	Transform layout.Transform
	ArcFactor float64
	WrapWidth int
	Legend    bool
}

// Compose builds the scene. Nodes without a position are skipped, as are
// edges whose endpoints are not both placed.
func Compose(in Input) *Scene {
	s := &Scene{
		Viewport:  in.Viewport.OrDefault(),
		Transform: in.Transform,
		Selected:  in.Highlight.Selected,
		Marker:    route.ArrowMarker(),
		Edges:     make([]EdgeVisual, 0, len(in.Edges)),
		Nodes:     make([]NodeVisual, 0, len(in.Nodes)),
	}
	if s.Transform.K == 0 {
		s.Transform = layout.Identity
	}
	if in.Legend {
		s.Legend = Legend()
	}

	for _, e := range in.Edges {
		src, ok1 := in.Positions[e.Source]
		dst, ok2 := in.Positions[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		arc := route.Route(src, dst, in.ArcFactor)
		emph := in.Highlight.Edge(e)
		s.Edges = append(s.Edges, EdgeVisual{
			Source:     e.Source,
			Target:     e.Target,
			Arc:        arc,
			Path:       arc.Path(),
			Label:      FormatCurrency(e.Value),
			Emphasis:   emph,
			Style:      highlight.EdgeStyleFor(emph),
			ArrowAngle: arc.EndAngle,
		})
	}

	for _, n := range in.Nodes {
		p, ok := in.Positions[n.ID]
		if !ok {
			continue
		}
		s.Nodes = append(s.Nodes, composeNode(n, p, in.Highlight.Node(n.ID), in.WrapWidth))
	}
	return s
}

func composeNode(n *graph.Node, p layout.Point, emph highlight.Emphasis, wrap int) NodeVisual {
	style := highlight.NodeStyleFor(emph)
	sw := SwatchFor(n.Category)
	high := n.Category == graph.High
	return NodeVisual{
		ID:       n.ID,
		Category: n.Category,
		Center:   p,
		Emphasis: emph,
		Style:    style,
		Fill:     sw.FillRGBA(style.FillOpacity),
		Stroke:   sw.Stroke,
		Banner:   high,
		Label:    WrapLabel(n.Name, wrap),
		EIN:      "EIN: " + n.EIN,
		Fields: []FieldLine{
			{Caption: "Gross receipts:", Value: FormatCompact(n.GrossReceipts)},
			{Caption: "Contributions:", Value: FormatCompact(n.Contributions)},
			{Caption: "Grants given:", Value: FormatCompact(n.GrantsGiven)},
			{Caption: "Taxpayer funds:", Value: FormatCompact(n.TaxpayerFunds), Emphasized: high},
		},
	}
}

// Card returns the card rectangle of a node in world coordinates.
func Card(center layout.Point) layout.Rect {
	return layout.Rect{X: center.X - CardWidth/2, Y: center.Y - CardHeight/2, Width: CardWidth, Height: CardHeight}
}
