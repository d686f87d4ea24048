package simplify

import "github.com/inodb/protgraph/internal/pepgraph"

// CollapseParallelEdges removes duplicate edges: within each vertex pair,
// edges with equal qualifier sets and the same cleavage flag are reduced to
// one. Edges with distinct qualifier sets stay as distinct parallel edges.
//
// Returns the number of edges removed.
func CollapseParallelEdges(g *pepgraph.Graph) int {
	removed := 0
	for _, v := range g.VertexIDs() {
		outs := append([]pepgraph.EdgeID(nil), g.OutEdges(v)...)
		// Group by target first; only same-target edges can be parallel.
		byTarget := make(map[pepgraph.VertexID][]pepgraph.EdgeID)
		for _, eid := range outs {
			to := g.Edge(eid).To
			byTarget[to] = append(byTarget[to], eid)
		}
		for _, parallel := range byTarget {
			if len(parallel) < 2 {
				continue
			}
			var kept []pepgraph.EdgeID
			for _, eid := range parallel {
				e := g.Edge(eid)
				duplicate := false
				for _, kid := range kept {
					k := g.Edge(kid)
					if k.Cleaved == e.Cleaved && pepgraph.EqualQualifiers(k.Qualifiers, e.Qualifiers) {
						duplicate = true
						break
					}
				}
				if duplicate {
					g.RemoveEdge(eid)
					removed++
				} else {
					kept = append(kept, eid)
				}
			}
		}
	}
	return removed
}
