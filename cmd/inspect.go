package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/render"
)

var (
	inspectJSON         bool
	inspectTopN         int
	inspectHubThreshold int
)

var (
	heading = color.New(color.FgHiGreen, color.Bold)
	subtle  = color.New(color.FgHiBlack)
	warn    = color.New(color.FgYellow)
	good    = color.New(color.FgGreen)
)

// inspectReport is the --json output.
type inspectReport struct {
	Source    string                `json:"source"`
	Summary   *graph.Summary        `json:"summary"`
	Integrity *graph.IntegrityError `json:"integrity,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the graph: categories, flows, hubs and data problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := loadSource()
		if err != nil {
			return err
		}
		defer src.Close()

		snap, err := graph.NewSnapshot(src.Nodes, src.Edges)
		var integrity *graph.IntegrityError
		if err != nil && !errors.As(err, &integrity) {
			return err
		}

		report := inspectReport{
			Source:    src.Name,
			Summary:   graph.Summarize(snap, inspectHubThreshold, inspectTopN),
			Integrity: integrity,
		}
		out := cmd.OutOrStdout()
		if inspectJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printInspect(out, report, snap)
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON")
	inspectCmd.Flags().IntVar(&inspectTopN, "top-n", 10, "Number of top items to show per section")
	inspectCmd.Flags().IntVar(&inspectHubThreshold, "hub-threshold", 5, "Minimum number of flows to consider a charity a hub")
	rootCmd.AddCommand(inspectCmd)
}

func printInspect(w io.Writer, r inspectReport, snap *graph.Snapshot) {
	s := r.Summary
	fmt.Fprintf(w, "\n  %s  %s\n", heading.Sprint("charitygraph"), subtle.Sprint(r.Source))
	fmt.Fprintf(w, "  Charities: %d  Flows: %d  Total flow: %s\n\n", s.TotalNodes, s.TotalEdges, render.FormatCompact(s.TotalFlow))

	heading.Fprintln(w, "  CATEGORIES")
	rows := make([][]string, 0, 3)
	for _, c := range []graph.Category{graph.High, graph.Medium, graph.Low} {
		rows = append(rows, []string{string(c), fmt.Sprint(s.ByCategory[c]), categoryRule(c)})
	}
	printTable(w, []string{"Category", "Charities", "Taxpayer funds"}, rows)

	if s.OrphanCount > 0 {
		fmt.Fprintf(w, "\n  Orphans: %d charities without flows\n", s.OrphanCount)
		for _, id := range s.OrphanIDs {
			n, _ := snap.Node(id)
			fmt.Fprintf(w, "    - %s (%s)\n", truncID(id), truncTitle(n.Name, 50))
		}
		if s.OrphanCount > len(s.OrphanIDs) {
			fmt.Fprintf(w, "    ... and %d more\n", s.OrphanCount-len(s.OrphanIDs))
		}
	}

	if len(s.Hubs) > 0 {
		fmt.Fprintln(w)
		heading.Fprintln(w, "  HUBS")
		rows = rows[:0]
		for _, h := range s.Hubs {
			rows = append(rows, []string{
				truncID(h.ID),
				truncTitle(h.Name, 40),
				fmt.Sprintf("%d (in=%d, out=%d)", h.Degree, h.InDegree, h.OutDegree),
				render.FormatCompact(h.Inflow),
				render.FormatCompact(h.Outflow),
			})
		}
		printTable(w, []string{"ID", "Name", "Flows", "Inflow", "Outflow"}, rows)
	}

	fmt.Fprintln(w)
	if r.Integrity == nil {
		fmt.Fprintf(w, "  %s no integrity problems\n\n", good.Sprint("✓"))
		return
	}
	warn.Fprintf(w, "  ⚠ %v\n", r.Integrity)
	details := r.Integrity.Details()
	limit := min(len(details), inspectTopN)
	for _, d := range details[:limit] {
		fmt.Fprintf(w, "    - %s\n", d)
	}
	if len(details) > limit {
		fmt.Fprintf(w, "    ... and %d more\n", len(details)-limit)
	}
	fmt.Fprintln(w)
}

func categoryRule(c graph.Category) string {
	switch c {
	case graph.High:
		return "> " + render.FormatCompact(graph.HighThreshold)
	case graph.Medium:
		return render.FormatCompact(graph.MediumThreshold) + " - " + render.FormatCompact(graph.HighThreshold)
	default:
		return "< " + render.FormatCompact(graph.MediumThreshold)
	}
}

// printTable prints a simple aligned table.
func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += fmt.Sprintf("%-*s  ", widths[i], h)
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	subtle.Fprintln(w, headerLine)
	subtle.Fprintln(w, sepLine)

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, line)
	}
}
