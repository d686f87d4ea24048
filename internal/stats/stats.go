// Package stats counts start-to-end paths of a peptide graph with dynamic
// programming over the reverse topological order. All counters use
// arbitrary-precision integers: large variant-dense proteins exceed 10^100
// paths.
package stats

import (
	"math/big"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// Options selects which counters to compute.
type Options struct {
	NumPaths     bool
	Miscleavages bool
	Hops         bool
	// FeatureOrigin additionally counts paths touching VARIANT, MUTAGEN and
	// CONFLICT branches. Requires NumPaths.
	FeatureOrigin bool
}

// Result carries the computed counters. Disabled counters stay nil.
type Result struct {
	NumNodes int
	NumEdges int

	NumPaths *big.Int
	// NumPathsMiscleavages[k] counts paths traversing exactly k cleaved edges.
	NumPathsMiscleavages []*big.Int
	// NumPathsHops[k] counts paths of exactly k edges.
	NumPathsHops []*big.Int

	NumPathsVariant  *big.Int
	NumPathsMutagen  *big.Int
	NumPathsConflict *big.Int
}

// Compute runs the enabled counters. The graph must be acyclic.
func Compute(g *pepgraph.Graph, opts Options) (Result, error) {
	res := Result{NumNodes: g.NumVertices(), NumEdges: g.NumEdges()}
	if !opts.NumPaths && !opts.Miscleavages && !opts.Hops {
		return res, nil
	}

	order, err := g.ReverseTopological()
	if err != nil {
		return res, err
	}

	if opts.NumPaths {
		res.NumPaths = countPaths(g, order, nil)
		if opts.FeatureOrigin {
			res.NumPathsVariant = touchingKind(g, order, res.NumPaths, pepgraph.KindVariant)
			res.NumPathsMutagen = touchingKind(g, order, res.NumPaths, pepgraph.KindMutagen)
			res.NumPathsConflict = touchingKind(g, order, res.NumPaths, pepgraph.KindConflict)
		}
	}
	if opts.Miscleavages {
		res.NumPathsMiscleavages = countBinned(g, order, func(e *pepgraph.Edge) int {
			if e.Cleaved {
				return 1
			}
			return 0
		})
	}
	if opts.Hops {
		res.NumPathsHops = countBinned(g, order, func(*pepgraph.Edge) int { return 1 })
	}
	return res, nil
}

// countPaths is the scalar DP: one path from the sink to itself, and every
// other vertex sums its successors. A non-nil skip predicate drops edges from
// the count.
func countPaths(g *pepgraph.Graph, order []pepgraph.VertexID, skip func(*pepgraph.Edge) bool) *big.Int {
	paths := make(map[pepgraph.VertexID]*big.Int, len(order))
	sink := g.Sink()
	for _, v := range order {
		if v == sink {
			paths[v] = big.NewInt(1)
			continue
		}
		sum := new(big.Int)
		for _, eid := range g.OutEdges(v) {
			e := g.Edge(eid)
			if skip != nil && skip(e) {
				continue
			}
			sum.Add(sum, paths[e.To])
		}
		paths[v] = sum
	}
	return paths[g.Source()]
}

// touchingKind counts paths that traverse at least one edge carrying the
// given qualifier kind: the total minus the paths avoiding the kind entirely.
func touchingKind(g *pepgraph.Graph, order []pepgraph.VertexID, total *big.Int, kind string) *big.Int {
	avoiding := countPaths(g, order, func(e *pepgraph.Edge) bool {
		return pepgraph.HasKind(e.Qualifiers, kind)
	})
	return new(big.Int).Sub(total, avoiding)
}

// countBinned is the polynomial DP: each vertex holds a coefficient vector
// whose k-th entry counts paths to the sink accumulating weight k, where an
// edge contributes the cost function's value. Cost 1 shifts the successor
// polynomial by one bin.
func countBinned(g *pepgraph.Graph, order []pepgraph.VertexID, cost func(*pepgraph.Edge) int) []*big.Int {
	polys := make(map[pepgraph.VertexID][]*big.Int, len(order))
	sink := g.Sink()
	for _, v := range order {
		if v == sink {
			polys[v] = []*big.Int{big.NewInt(1)}
			continue
		}
		var acc []*big.Int
		for _, eid := range g.OutEdges(v) {
			e := g.Edge(eid)
			child := polys[e.To]
			shift := cost(e)
			if need := len(child) + shift; need > len(acc) {
				grown := make([]*big.Int, need)
				copy(grown, acc)
				for i := len(acc); i < need; i++ {
					grown[i] = new(big.Int)
				}
				acc = grown
			}
			for k, c := range child {
				acc[k+shift].Add(acc[k+shift], c)
			}
		}
		polys[v] = acc
	}
	return polys[g.Source()]
}
