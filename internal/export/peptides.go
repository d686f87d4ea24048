package export

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// PeptideOptions bounds the path enumeration of the peptide exporter. Large
// proteins realise astronomically many paths; the hop bound keeps the
// traversal finite in practice.
type PeptideOptions struct {
	// MaxHops is the maximum number of edges in an enumerated path.
	MaxHops int
	// MaxMiscleavages filters paths by traversed cleaved edges; -1 keeps all.
	MaxMiscleavages int
	// MinPeptideLength drops peptides with fewer residues.
	MinPeptideLength int
}

// PepPostgresExporter enumerates bounded start-to-end paths and writes the
// realised peptides into accessions/peptides tables.
type PepPostgresExporter struct {
	cfg    PostgresConfig
	opts   PeptideOptions
	logger *zap.Logger
	pool   *pgxpool.Pool
}

// NewPepPostgresExporter builds the peptide Postgres exporter.
func NewPepPostgresExporter(cfg PostgresConfig, opts PeptideOptions, logger *zap.Logger) *PepPostgresExporter {
	return &PepPostgresExporter{cfg: cfg, opts: opts, logger: logger.Named("pep-postgres")}
}

func (p *PepPostgresExporter) Name() string { return "pep-postgres" }

func (p *PepPostgresExporter) StartUp(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, p.cfg.connString())
	if err != nil {
		return fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("connect to postgres at %s:%d: %w", p.cfg.Host, p.cfg.Port, err)
	}
	p.pool = pool

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS accessions (
			id BIGSERIAL PRIMARY KEY,
			accession VARCHAR(15) UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS peptides (
			id BIGSERIAL PRIMARY KEY,
			accession_id BIGINT REFERENCES accessions(id),
			sequence TEXT NOT NULL,
			length INT NOT NULL,
			miscleavages INT NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			p.pool.Close()
			return fmt.Errorf("create peptide tables: %w", err)
		}
	}
	return nil
}

func (p *PepPostgresExporter) TearDown(context.Context) error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *PepPostgresExporter) Export(ctx context.Context, g *pepgraph.Graph) error {
	var accessionID int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO accessions (accession) VALUES ($1)
		 ON CONFLICT (accession) DO UPDATE SET accession = EXCLUDED.accession
		 RETURNING id`, g.Accession).Scan(&accessionID)
	if err != nil {
		return fmt.Errorf("upsert accession: %w", err)
	}

	batch := &pgx.Batch{}
	count := 0
	EnumeratePeptides(g, p.opts, func(sequence string, miscleavages int) {
		batch.Queue(
			`INSERT INTO peptides (accession_id, sequence, length, miscleavages) VALUES ($1, $2, $3, $4)`,
			accessionID, sequence, len(sequence), miscleavages)
		count++
	})
	if count == 0 {
		return nil
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert %d peptides: %w", count, err)
	}
	p.logger.Debug("peptides exported", zap.String("accession", g.Accession), zap.Int("count", count))
	return nil
}

// EnumeratePeptides walks every start-to-end path within the hop bound and
// emits the peptides passing the filters.
func EnumeratePeptides(g *pepgraph.Graph, opts PeptideOptions, emit func(sequence string, miscleavages int)) {
	var residues []byte
	var walk func(v pepgraph.VertexID, hops, miscleavages int)
	walk = func(v pepgraph.VertexID, hops, miscleavages int) {
		if v == g.Sink() {
			if len(residues) >= opts.MinPeptideLength &&
				(opts.MaxMiscleavages < 0 || miscleavages <= opts.MaxMiscleavages) {
				emit(string(residues), miscleavages)
			}
			return
		}
		if hops >= opts.MaxHops {
			return
		}
		for _, eid := range g.OutEdges(v) {
			e := g.Edge(eid)
			mis := miscleavages
			if e.Cleaved {
				mis++
			}
			mark := len(residues)
			if !g.IsSentinel(e.To) {
				residues = append(residues, g.Vertex(e.To).Aminoacid...)
			}
			walk(e.To, hops+1, mis)
			residues = residues[:mark]
		}
	}
	walk(g.Source(), 0, 0)
}
