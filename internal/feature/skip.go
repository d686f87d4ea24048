package feature

import (
	"fmt"

	"github.com/inodb/protgraph/internal/embl"
	"github.com/inodb/protgraph/internal/pepgraph"
)

// applyInitMet records initiator-methionine removal: a skip edge from the
// start sentinel to the second residue. The canonical chain with the
// methionine stays intact.
func applyInitMet(g *pepgraph.Graph, f embl.Feature) error {
	a, b := span(f)
	if a != 1 || b != 1 {
		return fmt.Errorf("INIT_MET at [%d,%d], expected position 1: %w", a, b, pepgraph.ErrFeatureResolution)
	}
	if g.SequenceLength() < 2 {
		return fmt.Errorf("sequence too short to skip the initiator: %w", pepgraph.ErrFeatureResolution)
	}
	first, err := g.VertexAt(1)
	if err != nil {
		return err
	}
	if g.Vertex(first).Aminoacid != "M" {
		return fmt.Errorf("INIT_MET on residue %q: %w", g.Vertex(first).Aminoacid, pepgraph.ErrFeatureResolution)
	}
	after, err := g.VertexAt(2)
	if err != nil {
		return err
	}
	g.AddEdge(pepgraph.Edge{
		From: g.Source(),
		To:   after,
		Qualifiers: []pepgraph.Qualifier{{
			Kind:        pepgraph.KindInitMet,
			Description: f.Note,
			FeatureID:   f.ID,
			Start:       a,
			End:         b,
		}},
	})
	return nil
}

// applySignal records signal-peptide cleavage: a skip edge from the start
// sentinel to the first residue of the mature chain.
func applySignal(g *pepgraph.Graph, f embl.Feature) error {
	a, b := span(f)
	if a != 1 || b < 1 || b >= g.SequenceLength() {
		return fmt.Errorf("SIGNAL at [%d,%d] on sequence of length %d: %w",
			a, b, g.SequenceLength(), pepgraph.ErrFeatureResolution)
	}
	after, err := g.VertexAt(b + 1)
	if err != nil {
		return err
	}
	g.AddEdge(pepgraph.Edge{
		From: g.Source(),
		To:   after,
		Qualifiers: []pepgraph.Qualifier{{
			Kind:        pepgraph.KindSignal,
			Description: f.Note,
			FeatureID:   f.ID,
			Start:       a,
			End:         b,
		}},
	})
	return nil
}

// cleavedPeptideApplier handles PROPEP and PEPTIDE records: bypass edges that
// make the peptide region alone a valid start-to-end walk.
func cleavedPeptideApplier(kind string) applier {
	return func(g *pepgraph.Graph, f embl.Feature) error {
		a, b := span(f)
		if a < 1 || b > g.SequenceLength() || a > b {
			return fmt.Errorf("span [%d,%d] outside sequence of length %d: %w",
				a, b, g.SequenceLength(), pepgraph.ErrFeatureResolution)
		}
		start, err := g.VertexAt(a)
		if err != nil {
			return err
		}
		end, err := g.VertexAt(b)
		if err != nil {
			return err
		}
		q := pepgraph.Qualifier{
			Kind:        kind,
			Description: f.Note,
			FeatureID:   f.ID,
			Start:       a,
			End:         b,
		}
		g.AddEdge(pepgraph.Edge{From: g.Source(), To: start, Qualifiers: []pepgraph.Qualifier{q}})
		g.AddEdge(pepgraph.Edge{From: end, To: g.Sink(), Qualifiers: []pepgraph.Qualifier{q}})
		return nil
	}
}
