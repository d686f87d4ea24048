package feature

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/embl"
	"github.com/inodb/protgraph/internal/pepgraph"
)

// walkStrings enumerates the residue strings of all start-to-end walks.
func walkStrings(t *testing.T, g *pepgraph.Graph) []string {
	t.Helper()
	var walks []string
	var dfs func(v pepgraph.VertexID, acc string)
	dfs = func(v pepgraph.VertexID, acc string) {
		if v == g.Sink() {
			walks = append(walks, acc)
			return
		}
		if !g.IsSentinel(v) {
			acc += g.Vertex(v).Aminoacid
		}
		for _, eid := range g.OutEdges(v) {
			dfs(g.Edge(eid).To, acc)
		}
	}
	dfs(g.Source(), "")
	sort.Strings(walks)
	return walks
}

func feat(ftType string, start, end int, note, id string) embl.Feature {
	return embl.Feature{
		Type:     ftType,
		Location: embl.Location{NofuzzyStart: start - 1, NofuzzyEnd: end},
		Note:     note,
		ID:       id,
	}
}

func entryWith(sequence string, features ...embl.Feature) *embl.Entry {
	return &embl.Entry{
		Accessions: []string{"P12345"},
		EntryName:  "TEST_HUMAN",
		Sequence:   sequence,
		Features:   features,
	}
}

func apply(t *testing.T, entry *embl.Entry) (*pepgraph.Graph, Counts) {
	t.Helper()
	g, err := pepgraph.NewCanonical(entry.Sequence, entry.Accession())
	require.NoError(t, err)
	counts, err := ApplyAll(g, entry, DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	return g, counts
}

func TestApplyVariant_Substitution(t *testing.T) {
	g, counts := apply(t, entryWith("ACDE", feat(embl.FtVariant, 2, 2, "C -> G (in dbSNP:rs1)", "VAR_000001")))

	assert.Equal(t, []string{"ACDE", "AGDE"}, walkStrings(t, g))
	require.NotNil(t, counts.Variants)
	assert.Equal(t, 1, *counts.Variants)

	// The branch edges carry the variant qualifier.
	tagged := 0
	for _, eid := range g.EdgeIDs() {
		if pepgraph.HasKind(g.Edge(eid).Qualifiers, pepgraph.KindVariant) {
			tagged++
		}
	}
	assert.Equal(t, 2, tagged)
}

func TestApplyVariant_Deletion(t *testing.T) {
	g, _ := apply(t, entryWith("ACDE", feat(embl.FtVariant, 2, 3, "Missing (in a patient)", "")))
	assert.Equal(t, []string{"ACDE", "AE"}, walkStrings(t, g))
}

func TestApplyVariant_MultiResidue(t *testing.T) {
	g, _ := apply(t, entryWith("ACDE", feat(embl.FtConflict, 2, 3, "CD -> GHI (in Ref. 2)", "")))
	assert.Equal(t, []string{"ACDE", "AGHIE"}, walkStrings(t, g))
}

func TestApplyVariant_ReferenceMismatch(t *testing.T) {
	g, err := pepgraph.NewCanonical("ACDE", "P12345")
	require.NoError(t, err)
	entry := entryWith("ACDE", feat(embl.FtVariant, 2, 2, "W -> G", ""))
	_, err = ApplyAll(g, entry, DefaultConfig(), zap.NewNop())
	assert.ErrorIs(t, err, pepgraph.ErrFeatureResolution)
}

func TestApplyVariant_OutOfRange(t *testing.T) {
	g, err := pepgraph.NewCanonical("ACDE", "P12345")
	require.NoError(t, err)
	entry := entryWith("ACDE", feat(embl.FtVariant, 9, 9, "C -> G", ""))
	_, err = ApplyAll(g, entry, DefaultConfig(), zap.NewNop())
	assert.ErrorIs(t, err, pepgraph.ErrFeatureResolution)
}

func TestApplyVariant_IsoformScopedSkipped(t *testing.T) {
	// The note targets isoform positions the canonical backbone cannot
	// resolve; the feature is skipped, the entry survives.
	g, counts := apply(t, entryWith("ACDE", feat(embl.FtVariant, 2, 2, "W -> G (in isoform 2)", "")))
	assert.Equal(t, []string{"ACDE"}, walkStrings(t, g))
	require.NotNil(t, counts.Variants)
	assert.Equal(t, 0, *counts.Variants)
}

func TestApplyInitMet(t *testing.T) {
	g, counts := apply(t, entryWith("MAAK", feat(embl.FtInitMet, 1, 1, "Removed", "")))

	assert.Equal(t, []string{"AAK", "MAAK"}, walkStrings(t, g))
	require.NotNil(t, counts.InitMet)
	assert.Equal(t, 1, *counts.InitMet)
}

func TestApplyInitMet_NotMethionine(t *testing.T) {
	g, err := pepgraph.NewCanonical("AAK", "P12345")
	require.NoError(t, err)
	entry := entryWith("AAK", feat(embl.FtInitMet, 1, 1, "Removed", ""))
	_, err = ApplyAll(g, entry, DefaultConfig(), zap.NewNop())
	assert.ErrorIs(t, err, pepgraph.ErrFeatureResolution)
}

func TestApplySignal(t *testing.T) {
	g, counts := apply(t, entryWith("MASKD", feat(embl.FtSignal, 1, 2, "", "")))

	assert.Equal(t, []string{"MASKD", "SKD"}, walkStrings(t, g))
	require.NotNil(t, counts.Signal)
	assert.Equal(t, 1, *counts.Signal)
}

func TestApplyPeptide_BypassEdges(t *testing.T) {
	g, _ := apply(t, entryWith("ACDEF", feat(embl.FtPeptide, 2, 4, "Neuropeptide", "PRO_0000001")))

	assert.Equal(t, []string{"ACDE", "ACDEF", "CDE", "CDEF"}, walkStrings(t, g))
}

func TestApplyAll_SkipDisabledKinds(t *testing.T) {
	entry := entryWith("MACDE",
		feat(embl.FtInitMet, 1, 1, "Removed", ""),
		feat(embl.FtVariant, 3, 3, "C -> G", ""))
	g, err := pepgraph.NewCanonical(entry.Sequence, entry.Accession())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.InitMet = false
	cfg.Variants = false
	counts, err := ApplyAll(g, entry, cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"MACDE"}, walkStrings(t, g))
	assert.Nil(t, counts.InitMet)
	assert.Nil(t, counts.Variants)
}

func TestApplyVarSeq_Isoform(t *testing.T) {
	entry := entryWith("ACDE", feat(embl.FtVarSeq, 2, 3, "CD -> GH (in isoform 2)", "VSP_000001"))
	entry.Comments = []string{
		"ALTERNATIVE PRODUCTS:\nEvent=Alternative splicing; Named isoforms=2;\nName=1; IsoId=P12345-1; Sequence=Displayed;\nName=2; IsoId=P12345-2; Sequence=VSP_000001;",
	}
	g, counts := apply(t, entry)

	assert.Equal(t, []string{"ACDE", "AGHE"}, walkStrings(t, g))
	require.NotNil(t, counts.Isoforms)
	assert.Equal(t, 1, *counts.Isoforms)

	var isoVertices []*pepgraph.Vertex
	for _, vid := range g.VertexIDs() {
		if v := g.Vertex(vid); v.IsoformAccession != "" {
			isoVertices = append(isoVertices, v)
		}
	}
	require.Len(t, isoVertices, 2)
	assert.Equal(t, "P12345-2", isoVertices[0].IsoformAccession)
	assert.Equal(t, 2, isoVertices[0].IsoformPosition)
	assert.Equal(t, 3, isoVertices[1].IsoformPosition)
}

func TestApplyVarSeq_MissingRegion(t *testing.T) {
	entry := entryWith("ACDE", feat(embl.FtVarSeq, 2, 3, "Missing (in isoform Short)", "VSP_000002"))
	entry.Comments = []string{
		"ALTERNATIVE PRODUCTS:\nEvent=Alternative splicing; Named isoforms=2;\nName=1; IsoId=P12345-1; Sequence=Displayed;\nName=Short; IsoId=P12345-2; Sequence=VSP_000002;",
	}
	g, counts := apply(t, entry)

	assert.Equal(t, []string{"ACDE", "AE"}, walkStrings(t, g))
	require.NotNil(t, counts.Isoforms)
	assert.Equal(t, 1, *counts.Isoforms)
}

func TestApplyVarSeq_UnresolvableVSPSkipsIsoform(t *testing.T) {
	entry := entryWith("ACDE")
	entry.Comments = []string{
		"ALTERNATIVE PRODUCTS:\nEvent=Alternative splicing; Named isoforms=2;\nName=1; IsoId=P12345-1; Sequence=Displayed;\nName=2; IsoId=P12345-2; Sequence=VSP_999999;",
	}
	g, counts := apply(t, entry)

	assert.Equal(t, []string{"ACDE"}, walkStrings(t, g))
	require.NotNil(t, counts.Isoforms)
	assert.Equal(t, 0, *counts.Isoforms)
}

func TestApplyVarSeq_TwoFeaturesOneIsoform(t *testing.T) {
	entry := entryWith("ACDEFG",
		feat(embl.FtVarSeq, 2, 2, "C -> W (in isoform 2)", "VSP_000010"),
		feat(embl.FtVarSeq, 4, 5, "Missing (in isoform 2)", "VSP_000011"))
	entry.Comments = []string{
		"ALTERNATIVE PRODUCTS:\nEvent=Alternative splicing; Named isoforms=2;\nName=1; IsoId=P12345-1; Sequence=Displayed;\nName=2; IsoId=P12345-2; Sequence=VSP_000010, VSP_000011;",
	}
	g, _ := apply(t, entry)

	walks := walkStrings(t, g)
	assert.Contains(t, walks, "ACDEFG")
	assert.Contains(t, walks, "AWDG")   // isoform path through both changes
	assert.Contains(t, walks, "AWDEFG") // mixed path: substitution only
	assert.Contains(t, walks, "ACDG")   // mixed path: deletion only
}
