package export

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// Neo4jConfig carries the connection parameters of the Neo4j exporter.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
}

// Neo4jExporter writes each graph into a Neo4j database: one (:Residue) node
// per vertex, one [:NEXT] relationship per edge.
type Neo4jExporter struct {
	cfg    Neo4jConfig
	logger *zap.Logger
	driver neo4j.DriverWithContext
}

// NewNeo4jExporter builds the Neo4j graph exporter.
func NewNeo4jExporter(cfg Neo4jConfig, logger *zap.Logger) *Neo4jExporter {
	return &Neo4jExporter{cfg: cfg, logger: logger.Named("neo4j")}
}

func (n *Neo4jExporter) Name() string { return "neo4j" }

func (n *Neo4jExporter) StartUp(ctx context.Context) error {
	driver, err := neo4j.NewDriverWithContext(n.cfg.URI, neo4j.BasicAuth(n.cfg.User, n.cfg.Password, ""))
	if err != nil {
		return fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return fmt.Errorf("connect to neo4j at %s: %w", n.cfg.URI, err)
	}
	n.driver = driver
	n.logger.Info("connected", zap.String("uri", n.cfg.URI), zap.String("database", n.cfg.Database))
	return nil
}

func (n *Neo4jExporter) TearDown(ctx context.Context) error {
	if n.driver == nil {
		return nil
	}
	return n.driver.Close(ctx)
}

func (n *Neo4jExporter) Export(ctx context.Context, g *pepgraph.Graph) error {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.cfg.Database})
	defer session.Close(ctx)

	ids, index := nodeIndex(g)
	nodes := make([]map[string]any, 0, len(ids))
	for _, vid := range ids {
		v := g.Vertex(vid)
		node := map[string]any{
			"key":       fmt.Sprintf("%s:%d", g.Accession, index[vid]),
			"accession": v.Accession,
			"aminoacid": v.Aminoacid,
		}
		if v.Position != pepgraph.NoPosition {
			node["position"] = v.Position
		}
		if v.IsoformAccession != "" {
			node["isoform_accession"] = v.IsoformAccession
			node["isoform_position"] = v.IsoformPosition
		}
		nodes = append(nodes, node)
	}

	edges := make([]map[string]any, 0, g.NumEdges())
	for _, eid := range g.EdgeIDs() {
		e := g.Edge(eid)
		kinds := make([]string, 0, len(e.Qualifiers))
		for _, q := range e.Qualifiers {
			kinds = append(kinds, q.Kind)
		}
		edge := map[string]any{
			"from":       fmt.Sprintf("%s:%d", g.Accession, index[e.From]),
			"to":         fmt.Sprintf("%s:%d", g.Accession, index[e.To]),
			"cleaved":    e.Cleaved,
			"qualifiers": kinds,
		}
		if g.Weights.Mono {
			edge["mono_weight"] = e.MonoWeight
		}
		if g.Weights.Avrg {
			edge["avrg_weight"] = e.AvrgWeight
		}
		edges = append(edges, edge)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx,
			`UNWIND $nodes AS n
			 MERGE (r:Residue {key: n.key})
			 SET r += n`, map[string]any{"nodes": nodes}); err != nil {
			return nil, err
		}
		return tx.Run(ctx,
			`UNWIND $edges AS e
			 MATCH (a:Residue {key: e.from}), (b:Residue {key: e.to})
			 MERGE (a)-[rel:NEXT {cleaved: e.cleaved, qualifiers: e.qualifiers}]->(b)
			 SET rel.mono_weight = e.mono_weight, rel.avrg_weight = e.avrg_weight`,
			map[string]any{"edges": edges})
	})
	if err != nil {
		return fmt.Errorf("write graph %s: %w", g.Accession, err)
	}
	return nil
}
