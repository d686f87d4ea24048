package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// DuckDBExporter appends every graph's nodes and edges to a local DuckDB
// file, giving a queryable per-run store without a database server.
//
// DuckDB allows a single writer per file, so each worker writes its own
// shard: the configured path gets a per-worker suffix.
type DuckDBExporter struct {
	path   string
	worker int
	db     *sql.DB
}

// NewDuckDBExporter builds the DuckDB exporter for one worker.
func NewDuckDBExporter(path string, worker int) *DuckDBExporter {
	return &DuckDBExporter{path: path, worker: worker}
}

func (d *DuckDBExporter) Name() string { return "duckdb" }

func (d *DuckDBExporter) shardPath() string {
	ext := filepath.Ext(d.path)
	base := strings.TrimSuffix(d.path, ext)
	if ext == "" {
		ext = ".duckdb"
	}
	return fmt.Sprintf("%s-w%d%s", base, d.worker, ext)
}

func (d *DuckDBExporter) StartUp(context.Context) error {
	path := d.shardPath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create duckdb directory: %w", err)
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	d.db = db
	return d.ensureSchema()
}

func (d *DuckDBExporter) ensureSchema() error {
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS node_ids`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id BIGINT PRIMARY KEY DEFAULT nextval('node_ids'),
			accession VARCHAR,
			aminoacid VARCHAR,
			position INT,
			isoform_accession VARCHAR,
			isoform_position INT
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			source BIGINT,
			target BIGINT,
			cleaved BOOLEAN,
			mono_weight DOUBLE,
			mono_weight_to_end DOUBLE,
			avrg_weight DOUBLE,
			avrg_weight_to_end DOUBLE,
			qualifiers VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.Exec(stmt); err != nil {
			d.db.Close()
			return fmt.Errorf("ensure duckdb schema: %w", err)
		}
	}
	return nil
}

func (d *DuckDBExporter) TearDown(context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DuckDBExporter) Export(ctx context.Context, g *pepgraph.Graph) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ids, index := nodeIndex(g)
	dbIDs := make([]int64, len(ids))
	for i, vid := range ids {
		v := g.Vertex(vid)
		var position, isoPosition any
		if v.Position != pepgraph.NoPosition {
			position = v.Position
		}
		var isoAccession any
		if v.IsoformAccession != "" {
			isoAccession = v.IsoformAccession
			if v.IsoformPosition != pepgraph.NoPosition {
				isoPosition = v.IsoformPosition
			}
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO nodes (accession, aminoacid, position, isoform_accession, isoform_position)
			 VALUES (?, ?, ?, ?, ?) RETURNING id`,
			v.Accession, v.Aminoacid, position, isoAccession, isoPosition,
		).Scan(&dbIDs[i]); err != nil {
			return fmt.Errorf("insert node: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (source, target, cleaved, mono_weight, mono_weight_to_end, avrg_weight, avrg_weight_to_end, qualifiers)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for _, eid := range g.EdgeIDs() {
		e := g.Edge(eid)
		quals, err := json.Marshal(e.Qualifiers)
		if err != nil {
			return fmt.Errorf("marshal qualifiers: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			dbIDs[index[e.From]], dbIDs[index[e.To]], e.Cleaved,
			nullableWeight(g.Weights.Mono, e.MonoWeight),
			nullableWeight(g.Weights.MonoToEnd, e.MonoWeightToEnd),
			nullableWeight(g.Weights.Avrg, e.AvrgWeight),
			nullableWeight(g.Weights.AvrgToEnd, e.AvrgWeightToEnd),
			string(quals),
		); err != nil {
			return fmt.Errorf("insert edge: %w", err)
		}
	}
	return tx.Commit()
}

func nullableWeight(annotated bool, w float64) any {
	if !annotated {
		return nil
	}
	return w
}
