package render

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"datarepublican/charitygraph/internal/route"
)

// ExportFilename is the suggested name of a downloaded export.
const ExportFilename = "charity-graph.svg"

// ContentType is the media type of Encode output.
const ContentType = "image/svg+xml"

var num = route.Num

// Encode writes the scene as a standalone SVG document. Nodes are drawn
// after edges so cards sit on top of the curves.
func Encode(w io.Writer, s *Scene) error {
	bw := bufio.NewWriter(w)
	vp := s.Viewport.OrDefault()

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(vp.Width), num(vp.Height), num(vp.Width), num(vp.Height))
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", Background)

	m := s.Marker
	fmt.Fprintf(bw, `<defs><marker id="%s" viewBox="%s" refX="%s" refY="%s" markerWidth="%s" markerHeight="%s" orient="%s"><path d="%s" fill="%s"/></marker></defs>`+"\n",
		m.ID, m.ViewBox, num(m.RefX), num(m.RefY), num(m.Width), num(m.Height), m.Orient, m.Path, m.Fill)

	t := s.Transform
	fmt.Fprintf(bw, `<g class="viewport" transform="translate(%s,%s) scale(%s)">`+"\n", num(t.X), num(t.Y), num(t.K))

	bw.WriteString(`<g class="links">` + "\n")
	for _, e := range s.Edges {
		writeEdge(bw, e, m.URL())
	}
	bw.WriteString("</g>\n")

	bw.WriteString(`<g class="nodes">` + "\n")
	for _, nv := range s.Nodes {
		writeNode(bw, nv)
	}
	bw.WriteString("</g>\n</g>\n")

	if len(s.Legend) > 0 {
		writeLegend(bw, s.Legend, vp.Height)
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func writeEdge(w *bufio.Writer, e EdgeVisual, marker string) {
	fmt.Fprintf(w, `<g class="link" data-source="%s" data-target="%s">`, attr(e.Source), attr(e.Target))
	fmt.Fprintf(w, `<path d="%s" stroke="%s" stroke-opacity="%s" stroke-width="%s" fill="none" marker-end="%s"/>`,
		e.Path, route.EdgeColor, num(e.Style.StrokeOpacity), num(e.Style.StrokeWidth), marker)
	fmt.Fprintf(w, `<text transform="%s" dy="%d" fill="%s" font-size="11px" opacity="%s">%s</text>`,
		e.Arc.LabelTransform(), route.LabelOffset, route.EdgeColor, num(e.Style.LabelOpacity), text(e.Label))
	w.WriteString("</g>\n")
}

func writeNode(w *bufio.Writer, v NodeVisual) {
	st := v.Style
	op := num(st.TextOpacity)
	fmt.Fprintf(w, `<g class="node" data-id="%s" transform="translate(%s,%s)">`, attr(v.ID), num(v.Center.X), num(v.Center.Y))
	fmt.Fprintf(w, `<rect width="%d" height="%d" x="%d" y="%d" rx="%d" fill="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s"/>`,
		CardWidth, CardHeight, -CardWidth/2, -CardHeight/2, CardRadius, v.Fill, v.Stroke, num(st.StrokeWidth), num(st.StrokeOpacity))

	if v.Banner {
		fmt.Fprintf(w, `<g class="alert"><rect width="%d" height="%d" x="%d" y="%d" fill="%s" stroke="none"/>`,
			CardWidth, BannerHeight, -CardWidth/2, -CardHeight/2, AlertBanner)
		fmt.Fprintf(w, `<text x="-120" y="-60" fill="%s" font-size="11px" font-weight="bold" opacity="%s">%s</text></g>`,
			AlertColor, op, text(AlertText))
	}

	off := v.TextOffset()
	fmt.Fprintf(w, `<g transform="translate(%s,%s)">`, num(off.X), num(off.Y))
	fmt.Fprintf(w, `<text fill="white" font-size="12px" font-weight="bold" opacity="%s">`, op)
	for i, line := range v.Label {
		fmt.Fprintf(w, `<tspan x="0" y="%d">%s</tspan>`, i*LineHeight, text(line))
	}
	w.WriteString("</text>")

	einY := v.EINOffset()
	fmt.Fprintf(w, `<text y="%s" fill="%s" font-size="10px" opacity="%s">%s</text>`, num(einY), MutedColor, op, text(v.EIN))
	fmt.Fprintf(w, `<g transform="translate(0,%s)">`, num(einY+15))
	for i, f := range v.Fields {
		fill, weight := TextColor, "normal"
		if f.Emphasized {
			fill, weight = AlertColor, "bold"
		}
		fmt.Fprintf(w, `<text y="%d" fill="%s" font-size="11px" font-weight="%s" opacity="%s">%s</text>`,
			i*FieldSpacing, fill, weight, op, text(f.Text()))
	}
	w.WriteString("</g></g></g>\n")
}

func writeLegend(w *bufio.Writer, entries []LegendEntry, height float64) {
	top := height - float64(len(entries))*20 - 10
	fmt.Fprintf(w, `<g class="legend" transform="translate(10,%s)">`, num(top))
	for i, e := range entries {
		sw := SwatchFor(e.Category)
		fmt.Fprintf(w, `<rect x="0" y="%d" width="12" height="12" fill="%s" stroke="%s"/>`, i*20, sw.FillRGBA(0.1), e.Stroke)
		fmt.Fprintf(w, `<text x="18" y="%d" fill="%s" font-size="11px">%s</text>`, i*20+10, MutedColor, text(e.Caption))
	}
	w.WriteString("</g>\n")
}

func text(s string) string { return html.EscapeString(s) }
func attr(s string) string { return html.EscapeString(s) }

// Counts is the number of node and edge groups found in a document.
type Counts struct {
	Nodes int
	Edges int
}

// Measure parses an SVG document and counts its node and link groups.
func Measure(r io.Reader) (Counts, error) {
	var c Counts
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		if err != nil {
			return c, fmt.Errorf("parsing svg: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "g" {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local != "class" {
				continue
			}
			switch strings.TrimSpace(a.Value) {
			case "node":
				c.Nodes++
			case "link":
				c.Edges++
			}
		}
	}
}
