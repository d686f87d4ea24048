package export

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/digest"
	"github.com/inodb/protgraph/internal/pepgraph"
	"github.com/inodb/protgraph/internal/simplify"
)

func testGraph(t *testing.T, sequence string) *pepgraph.Graph {
	t.Helper()
	g, err := pepgraph.NewCanonical(sequence, "P12345")
	require.NoError(t, err)
	return g
}

func TestDotExporter(t *testing.T) {
	dir := t.TempDir()
	exp := NewDotExporter(FileConfig{Folder: dir})
	require.NoError(t, exp.StartUp(context.Background()))
	defer exp.TearDown(context.Background())

	require.NoError(t, exp.Export(context.Background(), testGraph(t, "MK")))

	raw, err := os.ReadFile(filepath.Join(dir, "P12345.dot"))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, `digraph "P12345"`)
	assert.Contains(t, content, `label="M"`)
	assert.Contains(t, content, "n0 -> n1")
}

func TestGraphMLExporter_WellFormed(t *testing.T) {
	dir := t.TempDir()
	exp := NewGraphMLExporter(FileConfig{Folder: dir})
	g := testGraph(t, "MKAP")
	digest.Digest(g, digest.Trypsin)
	simplify.MergeAminoacids(g)

	require.NoError(t, exp.Export(context.Background(), g))

	raw, err := os.ReadFile(filepath.Join(dir, "P12345.graphml"))
	require.NoError(t, err)

	var doc struct {
		Graph struct {
			Nodes []struct {
				ID string `xml:"id,attr"`
			} `xml:"graph>node"`
			Edges []struct {
				Source string `xml:"source,attr"`
				Target string `xml:"target,attr"`
			} `xml:"graph>edge"`
		}
	}
	// Well-formed XML with the merged node/edge counts.
	require.NoError(t, xml.Unmarshal(raw, &doc.Graph))
	assert.Len(t, doc.Graph.Nodes, 4)
	assert.Len(t, doc.Graph.Edges, 3)
}

func TestGMLExporter(t *testing.T) {
	dir := t.TempDir()
	exp := NewGMLExporter(FileConfig{Folder: dir})

	require.NoError(t, exp.Export(context.Background(), testGraph(t, "MK")))

	raw, err := os.ReadFile(filepath.Join(dir, "P12345.gml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "directed 1")
	assert.Contains(t, string(raw), "cleaved 0")
}

func TestFileConfig_InDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := FileConfig{Folder: dir, InDirectories: true}

	path, err := cfg.outputPath("P12345", ".dot")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "P", "1", "2", "3", "4", "5", "P12345.dot"), path)
	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestSet_StartUpFailureTearsDownStarted(t *testing.T) {
	good := &fakeExporter{name: "good"}
	bad := &fakeExporter{name: "bad", failStart: true}
	set := NewSet(zap.NewNop(), good, bad)

	require.Error(t, set.StartUp(context.Background()))
	assert.True(t, good.started)
	assert.True(t, good.tornDown)
}

func TestSet_ExportWrapsFailure(t *testing.T) {
	failing := &fakeExporter{name: "flaky", failExport: true}
	set := NewSet(zap.NewNop(), failing)
	require.NoError(t, set.StartUp(context.Background()))

	err := set.Export(context.Background(), testGraph(t, "MK"))
	assert.ErrorIs(t, err, pepgraph.ErrExporterFailure)
}

type fakeExporter struct {
	name       string
	failStart  bool
	failExport bool
	started    bool
	tornDown   bool
}

func (f *fakeExporter) Name() string { return f.name }

func (f *fakeExporter) StartUp(context.Context) error {
	if f.failStart {
		return assert.AnError
	}
	f.started = true
	return nil
}

func (f *fakeExporter) Export(context.Context, *pepgraph.Graph) error {
	if f.failExport {
		return assert.AnError
	}
	return nil
}

func (f *fakeExporter) TearDown(context.Context) error {
	f.tornDown = true
	return nil
}

func TestEnumeratePeptides(t *testing.T) {
	g := testGraph(t, "MKAP")
	require.Equal(t, 1, digest.Digest(g, digest.Trypsin))
	simplify.MergeAminoacids(g)

	var peptides []string
	misByPeptide := map[string]int{}
	EnumeratePeptides(g, PeptideOptions{MaxHops: 10, MaxMiscleavages: -1}, func(seq string, mis int) {
		peptides = append(peptides, seq)
		misByPeptide[seq] = mis
	})
	sort.Strings(peptides)

	// The only start-to-end walk realises the full sequence with one
	// miscleavage.
	assert.Equal(t, []string{"MKAP"}, peptides)
	assert.Equal(t, 1, misByPeptide["MKAP"])
}

func TestEnumeratePeptides_HopBound(t *testing.T) {
	g := testGraph(t, "MKAP")
	simplify.MergeAminoacids(g)

	var count int
	EnumeratePeptides(g, PeptideOptions{MaxHops: 1, MaxMiscleavages: -1}, func(string, int) { count++ })
	assert.Zero(t, count, "two hops are required through the merged graph")

	EnumeratePeptides(g, PeptideOptions{MaxHops: 2, MaxMiscleavages: -1}, func(string, int) { count++ })
	assert.Equal(t, 1, count)
}

func TestEnumeratePeptides_Filters(t *testing.T) {
	g := testGraph(t, "MKAP")
	digest.Digest(g, digest.Trypsin)
	simplify.MergeAminoacids(g)

	var count int
	EnumeratePeptides(g, PeptideOptions{MaxHops: 10, MaxMiscleavages: 0}, func(string, int) { count++ })
	assert.Zero(t, count, "the only walk has one miscleavage")

	EnumeratePeptides(g, PeptideOptions{MaxHops: 10, MaxMiscleavages: -1, MinPeptideLength: 5}, func(string, int) { count++ })
	assert.Zero(t, count, "peptide shorter than the minimum length")
}
