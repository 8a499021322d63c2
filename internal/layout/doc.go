// Package layout assigns screen positions to graph nodes.
//
// Two strategies implement the same Strategy interface:
//
//   - Grid places nodes row by row in a fixed number of columns, centered
//     in the viewport. Every position is pinned, so the result depends only
//     on node order and viewport size.
//   - Simulation relaxes the graph with link, many-body, centering and weak
//     axis forces until its energy (alpha) decays below a threshold. Results
//     vary with the random seed used to separate coincident nodes.
//
// Positions live in an Arena of Bodies indexed by node id. Edges keep ids
// and resolve coordinates through the arena.
package layout
