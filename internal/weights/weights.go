// Package weights annotates peptide graph edges with residue masses.
package weights

import (
	"math"

	"github.com/inodb/protgraph/internal/mass"
	"github.com/inodb/protgraph/internal/pepgraph"
)

// Modes selects the annotations to apply. The to-end modes imply their base
// mode.
type Modes struct {
	Mono      bool
	Avrg      bool
	MonoToEnd bool
	AvrgToEnd bool
}

// Enabled reports whether any annotation is requested.
func (m Modes) Enabled() bool { return m.Mono || m.Avrg || m.MonoToEnd || m.AvrgToEnd }

func (m Modes) normalized() Modes {
	if m.MonoToEnd {
		m.Mono = true
	}
	if m.AvrgToEnd {
		m.Avrg = true
	}
	return m
}

// Annotate writes the requested weight attributes onto every edge.
//
// Base weights follow the convention that an edge is charged for the residue
// run it enters, so edges into the end sentinel weigh nothing. The to-end
// weights propagate the minimum remaining mass in reverse topological order
// and are recorded on each vertex's incoming edges.
func Annotate(g *pepgraph.Graph, table *mass.Table, modes Modes) error {
	modes = modes.normalized()
	if !modes.Enabled() {
		return nil
	}

	for _, eid := range g.EdgeIDs() {
		e := g.Edge(eid)
		if g.IsSentinel(e.To) {
			continue
		}
		run := g.Vertex(e.To).Aminoacid
		if modes.Mono {
			e.MonoWeight = table.MonoSum(run)
		}
		if modes.Avrg {
			e.AvrgWeight = table.AvrgSum(run)
		}
	}

	if modes.MonoToEnd || modes.AvrgToEnd {
		if err := annotateToEnd(g, modes); err != nil {
			return err
		}
	}

	g.Weights = pepgraph.WeightModes{
		Mono:      modes.Mono,
		Avrg:      modes.Avrg,
		MonoToEnd: modes.MonoToEnd,
		AvrgToEnd: modes.AvrgToEnd,
	}
	return nil
}

func annotateToEnd(g *pepgraph.Graph, modes Modes) error {
	order, err := g.ReverseTopological()
	if err != nil {
		return err
	}

	monoToEnd := make(map[pepgraph.VertexID]float64, len(order))
	avrgToEnd := make(map[pepgraph.VertexID]float64, len(order))

	// The sink comes first in reverse topological order, so every successor
	// minimum is known by the time a vertex is reached.
	for _, v := range order {
		if v == g.Sink() {
			monoToEnd[v] = 0
			avrgToEnd[v] = 0
			continue
		}
		minMono := math.Inf(1)
		minAvrg := math.Inf(1)
		for _, eid := range g.OutEdges(v) {
			e := g.Edge(eid)
			if m := e.MonoWeight + monoToEnd[e.To]; m < minMono {
				minMono = m
			}
			if m := e.AvrgWeight + avrgToEnd[e.To]; m < minAvrg {
				minAvrg = m
			}
		}
		monoToEnd[v] = minMono
		avrgToEnd[v] = minAvrg
	}

	for _, eid := range g.EdgeIDs() {
		e := g.Edge(eid)
		if modes.MonoToEnd {
			e.MonoWeightToEnd = monoToEnd[e.To]
		}
		if modes.AvrgToEnd {
			e.AvrgWeightToEnd = avrgToEnd[e.To]
		}
	}
	return nil
}
