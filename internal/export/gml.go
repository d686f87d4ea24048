package export

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// GMLExporter writes one GML file per protein.
type GMLExporter struct {
	cfg FileConfig
}

// NewGMLExporter builds the GML file exporter.
func NewGMLExporter(cfg FileConfig) *GMLExporter { return &GMLExporter{cfg: cfg} }

func (e *GMLExporter) Name() string { return "gml" }

func (e *GMLExporter) StartUp(context.Context) error { return nil }

func (e *GMLExporter) TearDown(context.Context) error { return nil }

func (e *GMLExporter) Export(_ context.Context, g *pepgraph.Graph) error {
	path, err := e.cfg.outputPath(g.Accession, ".gml")
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("graph [\n  directed 1\n")
	ids, index := nodeIndex(g)
	for _, vid := range ids {
		v := g.Vertex(vid)
		fmt.Fprintf(&b, "  node [\n    id %d\n    label %q\n", index[vid], v.Aminoacid)
		if v.Position != pepgraph.NoPosition {
			fmt.Fprintf(&b, "    position %d\n", v.Position)
		}
		b.WriteString("  ]\n")
	}
	for _, eid := range g.EdgeIDs() {
		ed := g.Edge(eid)
		cleaved := 0
		if ed.Cleaved {
			cleaved = 1
		}
		fmt.Fprintf(&b, "  edge [\n    source %d\n    target %d\n    cleaved %d\n  ]\n",
			index[ed.From], index[ed.To], cleaved)
	}
	b.WriteString("]\n")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
