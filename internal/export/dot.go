package export

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// DotExporter writes one Graphviz dot file per protein.
type DotExporter struct {
	cfg FileConfig
}

// NewDotExporter builds the dot file exporter.
func NewDotExporter(cfg FileConfig) *DotExporter { return &DotExporter{cfg: cfg} }

func (d *DotExporter) Name() string { return "dot" }

func (d *DotExporter) StartUp(context.Context) error { return nil }

func (d *DotExporter) TearDown(context.Context) error { return nil }

func (d *DotExporter) Export(_ context.Context, g *pepgraph.Graph) error {
	path, err := d.cfg.outputPath(g.Accession, ".dot")
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", g.Accession)
	ids, index := nodeIndex(g)
	for _, v := range ids {
		fmt.Fprintf(&b, "  n%d [label=%q];\n", index[v], g.Vertex(v).Aminoacid)
	}
	for _, eid := range g.EdgeIDs() {
		e := g.Edge(eid)
		attrs := ""
		if e.Cleaved {
			attrs = " [style=dashed]"
		}
		fmt.Fprintf(&b, "  n%d -> n%d%s;\n", index[e.From], index[e.To], attrs)
	}
	b.WriteString("}\n")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
