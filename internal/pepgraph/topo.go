package pepgraph

import "fmt"

// ReverseTopological returns all live vertices ordered so that every edge
// points from a later to an earlier element (the sink comes first). Returns
// an error wrapping ErrVerifyFailed when the graph contains a cycle.
//
// Kahn's algorithm over out-degrees; the weight annotator and the statistics
// both consume this order directly.
func (g *Graph) ReverseTopological() ([]VertexID, error) {
	remaining := make(map[VertexID]int, g.numVertices)
	var queue []VertexID
	for _, v := range g.VertexIDs() {
		d := g.OutDegree(v)
		remaining[v] = d
		if d == 0 {
			queue = append(queue, v)
		}
	}

	order := make([]VertexID, 0, g.numVertices)
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		for _, eid := range g.in[v] {
			u := g.edges[eid].From
			remaining[u]--
			if remaining[u] == 0 {
				queue = append(queue, u)
			}
		}
	}

	if len(order) != g.numVertices {
		return nil, fmt.Errorf("cycle among %d of %d vertices: %w",
			g.numVertices-len(order), g.numVertices, ErrVerifyFailed)
	}
	return order, nil
}
