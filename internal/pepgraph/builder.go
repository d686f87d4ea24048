package pepgraph

import (
	"fmt"
	"strings"
)

// alphabet covers the 20 standard residues plus the ambiguity and rare codes
// B, J, O, U, X, Z that SwissProt sequences may contain.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewCanonical builds the linear graph for a residue sequence: a chain of one
// vertex per residue between a start and an end sentinel. The result has
// len(sequence)+2 vertices and len(sequence)+1 edges with empty attributes.
func NewCanonical(sequence, accession string) (*Graph, error) {
	if sequence == "" {
		return nil, fmt.Errorf("empty sequence for %s: %w", accession, ErrInputInvalid)
	}
	for i, r := range sequence {
		if r < 'A' || r > 'Z' || !strings.ContainsRune(alphabet, r) {
			return nil, fmt.Errorf("residue %q at position %d of %s: %w", r, i+1, accession, ErrInputInvalid)
		}
	}

	g := &Graph{Accession: accession}
	g.canonical = make([]VertexID, 0, len(sequence)+2)

	g.canonical = append(g.canonical, g.AddVertex(Vertex{
		Aminoacid:       StartSentinel,
		Position:        0,
		Accession:       accession,
		IsoformPosition: NoPosition,
	}))
	for i, r := range sequence {
		g.canonical = append(g.canonical, g.AddVertex(Vertex{
			Aminoacid:       string(r),
			Position:        i + 1,
			Accession:       accession,
			IsoformPosition: NoPosition,
		}))
	}
	g.canonical = append(g.canonical, g.AddVertex(Vertex{
		Aminoacid:       EndSentinel,
		Position:        len(sequence) + 1,
		Accession:       accession,
		IsoformPosition: NoPosition,
	}))

	for i := 0; i < len(g.canonical)-1; i++ {
		g.AddEdge(Edge{From: g.canonical[i], To: g.canonical[i+1]})
	}
	return g, nil
}
