package graph

import "sort"

// HubNode is a charity with many direct money flows.
type HubNode struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Degree    int     `json:"degree"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
	Outflow   float64 `json:"outflow"`
	Inflow    float64 `json:"inflow"`
}

// Summary describes a snapshot for the inspect report.
type Summary struct {
	TotalNodes  int              `json:"total_nodes"`
	TotalEdges  int              `json:"total_edges"`
	TotalFlow   float64          `json:"total_flow"`
	ByCategory  map[Category]int `json:"by_category"`
	OrphanCount int              `json:"orphan_count"`
	OrphanIDs   []string         `json:"orphan_ids"`
	Hubs        []HubNode        `json:"hubs"`
}

// Summarize counts nodes per category, nodes without any flow, and the
// charities whose degree exceeds hubThreshold (at most topN of each list).
func Summarize(snap *Snapshot, hubThreshold, topN int) *Summary {
	sum := &Summary{
		TotalNodes: snap.Len(),
		TotalEdges: len(snap.Edges),
		ByCategory: map[Category]int{High: 0, Medium: 0, Low: 0},
	}
	if sum.TotalNodes == 0 {
		return sum
	}

	inflow := make(map[string]float64)
	outflow := make(map[string]float64)
	for _, e := range snap.Edges {
		sum.TotalFlow += e.Value
		outflow[e.Source] += e.Value
		inflow[e.Target] += e.Value
	}

	nodeIDs := snap.NodeIDs()
	var orphans []string
	var hubs []HubNode
	for _, id := range nodeIDs {
		n, _ := snap.Node(id)
		sum.ByCategory[n.Category]++

		in, out := len(snap.In[id]), len(snap.Out[id])
		degree := in + out
		if degree == 0 {
			orphans = append(orphans, id)
		}
		if degree > hubThreshold {
			hubs = append(hubs, HubNode{
				ID:        id,
				Name:      n.Name,
				Degree:    degree,
				InDegree:  in,
				OutDegree: out,
				Outflow:   outflow[id],
				Inflow:    inflow[id],
			})
		}
	}

	sum.OrphanCount = len(orphans)
	if len(orphans) > topN {
		orphans = orphans[:topN]
	}
	sum.OrphanIDs = orphans

	sort.SliceStable(hubs, func(i, j int) bool { return hubs[i].Degree > hubs[j].Degree })
	if len(hubs) > topN {
		hubs = hubs[:topN]
	}
	sum.Hubs = hubs
	return sum
}
