package pepgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCanonical_Structure(t *testing.T) {
	g, err := NewCanonical("MK", "P12345")
	require.NoError(t, err)

	assert.Equal(t, 4, g.NumVertices())
	assert.Equal(t, 3, g.NumEdges())
	assert.Equal(t, "P12345", g.Accession)

	assert.Equal(t, StartSentinel, g.Vertex(g.Source()).Aminoacid)
	assert.Equal(t, EndSentinel, g.Vertex(g.Sink()).Aminoacid)
	assert.Equal(t, 0, g.InDegree(g.Source()))
	assert.Equal(t, 0, g.OutDegree(g.Sink()))

	v1, err := g.VertexAt(1)
	require.NoError(t, err)
	assert.Equal(t, "M", g.Vertex(v1).Aminoacid)
	assert.Equal(t, 1, g.Vertex(v1).Position)
	v2, err := g.VertexAt(2)
	require.NoError(t, err)
	assert.Equal(t, "K", g.Vertex(v2).Aminoacid)
}

func TestNewCanonical_InvalidResidue(t *testing.T) {
	_, err := NewCanonical("MA1K", "P12345")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputInvalid)

	_, err = NewCanonical("", "P12345")
	assert.ErrorIs(t, err, ErrInputInvalid)
}

func TestNewCanonical_AmbiguityCodes(t *testing.T) {
	g, err := NewCanonical("BJOUXZ", "P12345")
	require.NoError(t, err)
	assert.Equal(t, 8, g.NumVertices())
}

func TestVertexAt_OutOfRange(t *testing.T) {
	g, err := NewCanonical("ACDE", "P12345")
	require.NoError(t, err)

	_, err = g.VertexAt(-1)
	assert.ErrorIs(t, err, ErrFeatureResolution)
	_, err = g.VertexAt(6)
	assert.ErrorIs(t, err, ErrFeatureResolution)
}

func TestRemoveVertex_DropsIncidentEdges(t *testing.T) {
	g, err := NewCanonical("ACD", "P12345")
	require.NoError(t, err)

	v, err := g.VertexAt(2)
	require.NoError(t, err)
	g.RemoveVertex(v)

	assert.Equal(t, 4, g.NumVertices())
	assert.Equal(t, 2, g.NumEdges())
	_, err = g.VertexAt(2)
	assert.ErrorIs(t, err, ErrFeatureResolution)
}

func TestReverseTopological_LinearChain(t *testing.T) {
	g, err := NewCanonical("ACD", "P12345")
	require.NoError(t, err)

	order, err := g.ReverseTopological()
	require.NoError(t, err)
	require.Len(t, order, 5)
	assert.Equal(t, g.Sink(), order[0])
	assert.Equal(t, g.Source(), order[len(order)-1])

	// Every edge must point from a later to an earlier element.
	rank := make(map[VertexID]int, len(order))
	for i, v := range order {
		rank[v] = i
	}
	for _, eid := range g.EdgeIDs() {
		e := g.Edge(eid)
		assert.Greater(t, rank[e.From], rank[e.To])
	}
}

func TestReverseTopological_DetectsCycle(t *testing.T) {
	g, err := NewCanonical("ACD", "P12345")
	require.NoError(t, err)

	v1, err := g.VertexAt(1)
	require.NoError(t, err)
	v3, err := g.VertexAt(3)
	require.NoError(t, err)
	g.AddEdge(Edge{From: v3, To: v1})

	_, err = g.ReverseTopological()
	assert.ErrorIs(t, err, ErrVerifyFailed)
}

func TestEqualQualifiers(t *testing.T) {
	a := Qualifier{Kind: KindVariant, Description: "A -> G", Start: 2, End: 2}
	b := Qualifier{Kind: KindMutagen, Description: "A -> G", Start: 2, End: 2}

	assert.True(t, EqualQualifiers(nil, nil))
	assert.True(t, EqualQualifiers([]Qualifier{a}, []Qualifier{a}))
	assert.False(t, EqualQualifiers([]Qualifier{a}, []Qualifier{b}))
	assert.False(t, EqualQualifiers([]Qualifier{a}, nil))
}
