// Package export hands finished peptide graphs to external sinks: per-protein
// graph files (dot, GraphML, GML), relational stores (Postgres, DuckDB), a
// Neo4j graph database, and a peptide table enumerated from bounded paths.
//
// Every worker owns its own exporter set: StartUp is called once per worker,
// TearDown on every worker exit path. Failures during Export are local to the
// entry being processed.
package export

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// Exporter is one external sink for finished graphs.
type Exporter interface {
	Name() string
	// StartUp acquires external resources. Called once before the first
	// Export.
	StartUp(ctx context.Context) error
	// Export writes one fully annotated graph.
	Export(ctx context.Context, g *pepgraph.Graph) error
	// TearDown releases resources. Called on every exit path.
	TearDown(ctx context.Context) error
}

// Set runs a group of exporters as one collaborator.
type Set struct {
	exporters []Exporter
	logger    *zap.Logger
}

// NewSet groups exporters. The set may be empty.
func NewSet(logger *zap.Logger, exporters ...Exporter) *Set {
	return &Set{exporters: exporters, logger: logger}
}

// StartUp starts every exporter, tearing down the already-started ones when
// one fails.
func (s *Set) StartUp(ctx context.Context) error {
	for i, exp := range s.exporters {
		if err := exp.StartUp(ctx); err != nil {
			for _, started := range s.exporters[:i] {
				if terr := started.TearDown(ctx); terr != nil {
					s.logger.Warn("tear down after failed start",
						zap.String("exporter", started.Name()), zap.Error(terr))
				}
			}
			return fmt.Errorf("start %s exporter: %w", exp.Name(), err)
		}
	}
	return nil
}

// Export hands the graph to every exporter. All sinks are attempted; any
// failure is reported wrapping pepgraph.ErrExporterFailure.
func (s *Set) Export(ctx context.Context, g *pepgraph.Graph) error {
	var errs []error
	for _, exp := range s.exporters {
		if err := exp.Export(ctx, g); err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", exp.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", pepgraph.ErrExporterFailure, errors.Join(errs...))
	}
	return nil
}

// TearDown releases every exporter's resources.
func (s *Set) TearDown(ctx context.Context) error {
	var errs []error
	for _, exp := range s.exporters {
		if err := exp.TearDown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tear down %s: %v", exp.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// nodeIndex assigns dense 0-based ids to the live vertices of a graph, in
// arena order. Exports address vertices through it so tombstoned arena slots
// never leak into sinks.
func nodeIndex(g *pepgraph.Graph) (ids []pepgraph.VertexID, index map[pepgraph.VertexID]int) {
	ids = g.VertexIDs()
	index = make(map[pepgraph.VertexID]int, len(ids))
	for i, v := range ids {
		index[v] = i
	}
	return ids, index
}
