// Package verify checks the structural invariants of a finished peptide
// graph. It never mutates the graph.
package verify

import (
	"fmt"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// Verify checks that the graph is a DAG with a single source and sink, that
// every vertex lies on a start-to-end path, that no parallel edges share a
// qualifier set, and that the sentinels are well formed. Violations are
// reported as errors wrapping pepgraph.ErrVerifyFailed.
func Verify(g *pepgraph.Graph) error {
	if _, err := g.ReverseTopological(); err != nil {
		return err
	}
	if err := verifyEndpoints(g); err != nil {
		return err
	}
	if err := verifyReachability(g); err != nil {
		return err
	}
	return verifyParallelEdges(g)
}

func verifyEndpoints(g *pepgraph.Graph) error {
	var sources, sinks int
	for _, v := range g.VertexIDs() {
		if g.InDegree(v) == 0 {
			sources++
			if v != g.Source() {
				return fmt.Errorf("vertex %d has no predecessors but is not the start sentinel: %w", v, pepgraph.ErrVerifyFailed)
			}
		}
		if g.OutDegree(v) == 0 {
			sinks++
			if v != g.Sink() {
				return fmt.Errorf("vertex %d has no successors but is not the end sentinel: %w", v, pepgraph.ErrVerifyFailed)
			}
		}
	}
	if sources != 1 || sinks != 1 {
		return fmt.Errorf("%d sources and %d sinks, want exactly one of each: %w", sources, sinks, pepgraph.ErrVerifyFailed)
	}
	if g.Vertex(g.Source()).Aminoacid != pepgraph.StartSentinel ||
		g.Vertex(g.Sink()).Aminoacid != pepgraph.EndSentinel {
		return fmt.Errorf("sentinel vertices carry non-sentinel residues: %w", pepgraph.ErrVerifyFailed)
	}
	if g.Weights.Mono || g.Weights.Avrg {
		for _, eid := range g.InEdges(g.Sink()) {
			e := g.Edge(eid)
			if e.MonoWeight != 0 || e.AvrgWeight != 0 {
				return fmt.Errorf("edge into the end sentinel carries mass: %w", pepgraph.ErrVerifyFailed)
			}
		}
	}
	return nil
}

func verifyReachability(g *pepgraph.Graph) error {
	forward := walk(g, g.Source(), g.OutEdges, func(e *pepgraph.Edge) pepgraph.VertexID { return e.To })
	backward := walk(g, g.Sink(), g.InEdges, func(e *pepgraph.Edge) pepgraph.VertexID { return e.From })
	for _, v := range g.VertexIDs() {
		if !forward[v] {
			return fmt.Errorf("vertex %d not reachable from the start sentinel: %w", v, pepgraph.ErrVerifyFailed)
		}
		if !backward[v] {
			return fmt.Errorf("vertex %d cannot reach the end sentinel: %w", v, pepgraph.ErrVerifyFailed)
		}
	}
	return nil
}

func walk(g *pepgraph.Graph, from pepgraph.VertexID, edges func(pepgraph.VertexID) []pepgraph.EdgeID, next func(*pepgraph.Edge) pepgraph.VertexID) map[pepgraph.VertexID]bool {
	seen := map[pepgraph.VertexID]bool{from: true}
	stack := []pepgraph.VertexID{from}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, eid := range edges(v) {
			w := next(g.Edge(eid))
			if !seen[w] {
				seen[w] = true
				stack = append(stack, w)
			}
		}
	}
	return seen
}

func verifyParallelEdges(g *pepgraph.Graph) error {
	for _, v := range g.VertexIDs() {
		outs := g.OutEdges(v)
		for i := 0; i < len(outs); i++ {
			for j := i + 1; j < len(outs); j++ {
				a, b := g.Edge(outs[i]), g.Edge(outs[j])
				if a.To == b.To && a.Cleaved == b.Cleaved && pepgraph.EqualQualifiers(a.Qualifiers, b.Qualifiers) {
					return fmt.Errorf("parallel edges %d -> %d with identical qualifiers: %w",
						v, a.To, pepgraph.ErrVerifyFailed)
				}
			}
		}
	}
	return nil
}
