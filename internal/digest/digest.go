// Package digest marks proteolytic cleavage sites on peptide graph edges.
package digest

import (
	"fmt"
	"strings"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// Mode selects the digestion rule.
type Mode string

const (
	// Trypsin cleaves after K or R when the next residue is not P.
	Trypsin Mode = "trypsin"
	// Full cleaves every edge between residue vertices.
	Full Mode = "full"
	// Skip performs no digestion.
	Skip Mode = "skip"
)

// ParseMode reads the --digestion flag value.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case Trypsin:
		return Trypsin, nil
	case Full:
		return Full, nil
	case Skip:
		return Skip, nil
	default:
		return "", fmt.Errorf("unknown digestion mode %q (want trypsin, full or skip)", s)
	}
}

// Digest marks cleavage edges according to the mode and returns the number of
// edges newly marked. Edges touching a sentinel vertex are never cleaved.
func Digest(g *pepgraph.Graph, mode Mode) int {
	if mode == Skip {
		return 0
	}

	marked := 0
	for _, eid := range g.EdgeIDs() {
		e := g.Edge(eid)
		if e.Cleaved || g.IsSentinel(e.From) || g.IsSentinel(e.To) {
			continue
		}
		if mode == Full || trypsinSite(g.Vertex(e.From).Aminoacid, g.Vertex(e.To).Aminoacid) {
			e.Cleaved = true
			marked++
		}
	}
	return marked
}

// trypsinSite applies the K/R-not-before-P rule to the residue runs on both
// sides of an edge.
func trypsinSite(from, to string) bool {
	last := from[len(from)-1]
	return (last == 'K' || last == 'R') && to[0] != 'P'
}
