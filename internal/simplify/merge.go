// Package simplify shrinks a peptide graph without changing the set of
// residue strings its start-to-end walks realise: chain merging concatenates
// unbranched vertex runs, parallel collapse deduplicates edges with equal
// qualifier sets.
package simplify

import "github.com/inodb/protgraph/internal/pepgraph"

// MergeAminoacids collapses maximal unbranched vertex runs into single
// vertices whose residue string is the ordered concatenation of the run.
// A merge step absorbs a vertex into its sole predecessor when the connecting
// edge is the predecessor's only out-edge and the vertex's only in-edge.
// Cleaved edges are never merged across, and an edge carrying qualifiers is
// only spliced out when every surviving out-edge of the absorbed vertex
// carries the same qualifiers, so no variant tag is lost.
//
// Returns the number of vertices removed.
func MergeAminoacids(g *pepgraph.Graph) int {
	removed := 0
	for {
		merged := false
		for _, v := range g.VertexIDs() {
			if g.IsSentinel(v) || g.InDegree(v) != 1 {
				continue
			}
			eid := g.InEdges(v)[0]
			e := g.Edge(eid)
			u := e.From
			if g.IsSentinel(u) || g.OutDegree(u) != 1 || e.Cleaved {
				continue
			}
			if !compatibleVertices(g.Vertex(u), g.Vertex(v)) {
				continue
			}
			if !qualifiersPreserved(g, e.Qualifiers, v) {
				continue
			}

			// Absorb v into u: concatenate the residue runs, move v's
			// out-edges to leave from u, fold the spliced edge's weights in.
			uv := g.Vertex(u)
			uv.Aminoacid += g.Vertex(v).Aminoacid
			for _, out := range append([]pepgraph.EdgeID(nil), g.OutEdges(v)...) {
				oe := g.Edge(out)
				oe.MonoWeight += e.MonoWeight
				oe.AvrgWeight += e.AvrgWeight
				g.RetargetEdgeSource(out, u)
			}
			g.RemoveEdge(eid)
			g.RemoveVertex(v)
			removed++
			merged = true
		}
		if !merged {
			return removed
		}
	}
}

// compatibleVertices guards a merge: both runs must belong to the same
// protein and the same isoform path.
func compatibleVertices(u, v *pepgraph.Vertex) bool {
	return u.Accession == v.Accession && u.IsoformAccession == v.IsoformAccession
}

// qualifiersPreserved reports whether splicing out an edge with the given
// qualifiers keeps every walk's qualifier trace intact: each of the absorbed
// vertex's out-edges must already carry the same qualifier set.
func qualifiersPreserved(g *pepgraph.Graph, qs []pepgraph.Qualifier, v pepgraph.VertexID) bool {
	if len(qs) == 0 {
		return true
	}
	for _, out := range g.OutEdges(v) {
		if !pepgraph.EqualQualifiers(qs, g.Edge(out).Qualifiers) {
			return false
		}
	}
	return true
}
