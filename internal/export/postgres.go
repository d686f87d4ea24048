package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/mass"
	"github.com/inodb/protgraph/internal/pepgraph"
)

// PostgresConfig carries the connection parameters of the Postgres exporters.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (c PostgresConfig) connString() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s",
		c.Host, c.Port, c.Database, c.User, c.Password)
}

// PostgresExporter writes every graph into shared nodes and edges tables.
// The weight columns switch between BIGINT and DOUBLE PRECISION with the
// configured mass representation.
type PostgresExporter struct {
	cfg      PostgresConfig
	massKind mass.Kind
	logger   *zap.Logger
	pool     *pgxpool.Pool
}

// NewPostgresExporter builds the nodes/edges Postgres exporter.
func NewPostgresExporter(cfg PostgresConfig, massKind mass.Kind, logger *zap.Logger) *PostgresExporter {
	return &PostgresExporter{cfg: cfg, massKind: massKind, logger: logger.Named("postgres")}
}

func (p *PostgresExporter) Name() string { return "postgres" }

func (p *PostgresExporter) StartUp(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, p.cfg.connString())
	if err != nil {
		return fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("connect to postgres at %s:%d: %w", p.cfg.Host, p.cfg.Port, err)
	}
	p.pool = pool

	weightType := "DOUBLE PRECISION"
	if p.massKind == mass.Int {
		weightType = "BIGINT"
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			id BIGSERIAL PRIMARY KEY,
			accession VARCHAR(15) NOT NULL,
			aminoacid TEXT NOT NULL,
			position INT,
			isoform_accession VARCHAR(20),
			isoform_position INT
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS edges (
			id BIGSERIAL PRIMARY KEY,
			source BIGINT REFERENCES nodes(id),
			target BIGINT REFERENCES nodes(id),
			cleaved BOOLEAN,
			mono_weight %[1]s,
			mono_weight_to_end %[1]s,
			avrg_weight %[1]s,
			avrg_weight_to_end %[1]s,
			qualifiers JSONB
		)`, weightType),
	}
	for _, stmt := range ddl {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			p.pool.Close()
			return fmt.Errorf("create postgres tables: %w", err)
		}
	}
	p.logger.Info("connected", zap.String("host", p.cfg.Host), zap.Int("port", p.cfg.Port))
	return nil
}

func (p *PostgresExporter) TearDown(context.Context) error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *PostgresExporter) Export(ctx context.Context, g *pepgraph.Graph) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ids, index := nodeIndex(g)
	dbIDs := make([]int64, len(ids))
	for i, vid := range ids {
		v := g.Vertex(vid)
		var position, isoPosition *int
		if v.Position != pepgraph.NoPosition {
			pos := v.Position
			position = &pos
		}
		var isoAccession *string
		if v.IsoformAccession != "" {
			isoAccession = &v.IsoformAccession
			if v.IsoformPosition != pepgraph.NoPosition {
				pos := v.IsoformPosition
				isoPosition = &pos
			}
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO nodes (accession, aminoacid, position, isoform_accession, isoform_position)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			v.Accession, v.Aminoacid, position, isoAccession, isoPosition,
		).Scan(&dbIDs[i]); err != nil {
			return fmt.Errorf("insert node: %w", err)
		}
	}

	batch := &pgx.Batch{}
	for _, eid := range g.EdgeIDs() {
		e := g.Edge(eid)
		quals, err := json.Marshal(e.Qualifiers)
		if err != nil {
			return fmt.Errorf("marshal qualifiers: %w", err)
		}
		batch.Queue(
			`INSERT INTO edges (source, target, cleaved, mono_weight, mono_weight_to_end, avrg_weight, avrg_weight_to_end, qualifiers)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			dbIDs[index[e.From]], dbIDs[index[e.To]], e.Cleaved,
			weightColumn(g.Weights.Mono, e.MonoWeight, p.massKind),
			weightColumn(g.Weights.MonoToEnd, e.MonoWeightToEnd, p.massKind),
			weightColumn(g.Weights.Avrg, e.AvrgWeight, p.massKind),
			weightColumn(g.Weights.AvrgToEnd, e.AvrgWeightToEnd, p.massKind),
			quals,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert edges: %w", err)
	}
	return tx.Commit(ctx)
}

// weightColumn renders a weight for its SQL column: NULL when the annotation
// was not computed, int64 in integer mass mode.
func weightColumn(annotated bool, w float64, kind mass.Kind) any {
	if !annotated {
		return nil
	}
	if kind == mass.Int {
		return int64(w)
	}
	return w
}
