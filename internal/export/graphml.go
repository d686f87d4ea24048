package export

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// GraphMLExporter writes one GraphML file per protein, carrying the full
// attribute vocabulary (residues, positions, qualifiers, cleavage, weights).
type GraphMLExporter struct {
	cfg FileConfig
}

// NewGraphMLExporter builds the GraphML file exporter.
func NewGraphMLExporter(cfg FileConfig) *GraphMLExporter { return &GraphMLExporter{cfg: cfg} }

func (e *GraphMLExporter) Name() string { return "graphml" }

func (e *GraphMLExporter) StartUp(context.Context) error { return nil }

func (e *GraphMLExporter) TearDown(context.Context) error { return nil }

type graphmlKey struct {
	XMLName  xml.Name `xml:"key"`
	ID       string   `xml:"id,attr"`
	For      string   `xml:"for,attr"`
	AttrName string   `xml:"attr.name,attr"`
	AttrType string   `xml:"attr.type,attr"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type graphmlNode struct {
	XMLName xml.Name      `xml:"node"`
	ID      string        `xml:"id,attr"`
	Data    []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	XMLName xml.Name      `xml:"edge"`
	Source  string        `xml:"source,attr"`
	Target  string        `xml:"target,attr"`
	Data    []graphmlData `xml:"data"`
}

type graphmlGraph struct {
	XMLName     xml.Name `xml:"graph"`
	ID          string   `xml:"id,attr"`
	EdgeDefault string   `xml:"edgedefault,attr"`
	Nodes       []graphmlNode
	Edges       []graphmlEdge
}

type graphmlDoc struct {
	XMLName xml.Name `xml:"graphml"`
	Xmlns   string   `xml:"xmlns,attr"`
	Keys    []graphmlKey
	Graph   graphmlGraph
}

func (e *GraphMLExporter) Export(_ context.Context, g *pepgraph.Graph) error {
	path, err := e.cfg.outputPath(g.Accession, ".graphml")
	if err != nil {
		return err
	}

	doc := graphmlDoc{
		Xmlns: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: "aminoacid", For: "node", AttrName: "aminoacid", AttrType: "string"},
			{ID: "position", For: "node", AttrName: "position", AttrType: "int"},
			{ID: "accession", For: "node", AttrName: "accession", AttrType: "string"},
			{ID: "isoform_accession", For: "node", AttrName: "isoform_accession", AttrType: "string"},
			{ID: "isoform_position", For: "node", AttrName: "isoform_position", AttrType: "int"},
			{ID: "qualifiers", For: "edge", AttrName: "qualifiers", AttrType: "string"},
			{ID: "cleaved", For: "edge", AttrName: "cleaved", AttrType: "boolean"},
			{ID: "mono_weight", For: "edge", AttrName: "mono_weight", AttrType: "double"},
			{ID: "avrg_weight", For: "edge", AttrName: "avrg_weight", AttrType: "double"},
			{ID: "mono_weight_to_end", For: "edge", AttrName: "mono_weight_to_end", AttrType: "double"},
			{ID: "avrg_weight_to_end", For: "edge", AttrName: "avrg_weight_to_end", AttrType: "double"},
		},
		Graph: graphmlGraph{ID: g.Accession, EdgeDefault: "directed"},
	}

	ids, index := nodeIndex(g)
	for _, vid := range ids {
		v := g.Vertex(vid)
		node := graphmlNode{
			ID: "n" + strconv.Itoa(index[vid]),
			Data: []graphmlData{
				{Key: "aminoacid", Value: v.Aminoacid},
				{Key: "accession", Value: v.Accession},
			},
		}
		if v.Position != pepgraph.NoPosition {
			node.Data = append(node.Data, graphmlData{Key: "position", Value: strconv.Itoa(v.Position)})
		}
		if v.IsoformAccession != "" {
			node.Data = append(node.Data,
				graphmlData{Key: "isoform_accession", Value: v.IsoformAccession},
				graphmlData{Key: "isoform_position", Value: strconv.Itoa(v.IsoformPosition)})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, node)
	}

	for _, eid := range g.EdgeIDs() {
		ed := g.Edge(eid)
		edge := graphmlEdge{
			Source: "n" + strconv.Itoa(index[ed.From]),
			Target: "n" + strconv.Itoa(index[ed.To]),
			Data: []graphmlData{
				{Key: "cleaved", Value: strconv.FormatBool(ed.Cleaved)},
			},
		}
		if len(ed.Qualifiers) > 0 {
			quals, err := json.Marshal(ed.Qualifiers)
			if err != nil {
				return fmt.Errorf("marshal qualifiers: %w", err)
			}
			edge.Data = append(edge.Data, graphmlData{Key: "qualifiers", Value: string(quals)})
		}
		if g.Weights.Mono {
			edge.Data = append(edge.Data, graphmlData{Key: "mono_weight", Value: formatWeight(ed.MonoWeight)})
		}
		if g.Weights.Avrg {
			edge.Data = append(edge.Data, graphmlData{Key: "avrg_weight", Value: formatWeight(ed.AvrgWeight)})
		}
		if g.Weights.MonoToEnd {
			edge.Data = append(edge.Data, graphmlData{Key: "mono_weight_to_end", Value: formatWeight(ed.MonoWeightToEnd)})
		}
		if g.Weights.AvrgToEnd {
			edge.Data = append(edge.Data, graphmlData{Key: "avrg_weight_to_end", Value: formatWeight(ed.AvrgWeightToEnd)})
		}
		doc.Graph.Edges = append(doc.Graph.Edges, edge)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graphml: %w", err)
	}
	return os.WriteFile(path, append([]byte(xml.Header), out...), 0o644)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
