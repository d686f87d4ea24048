package mass

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("INT")
	require.NoError(t, err)
	assert.Equal(t, Int, kind)

	kind, err = ParseKind("float")
	require.NoError(t, err)
	assert.Equal(t, Float, kind)

	_, err = ParseKind("decimal")
	assert.Error(t, err)
}

func TestTable_FloatMode(t *testing.T) {
	table, warnings := NewTable(Float, 1)
	assert.Empty(t, warnings)

	assert.InDelta(t, 57.02146, table.Mono('G'), 1e-9)
	assert.InDelta(t, 186.2132, table.Avrg('W'), 1e-9)
	assert.Zero(t, table.Mono('X'))
}

func TestTable_IntModeScalesAndRounds(t *testing.T) {
	table, _ := NewTable(Int, DefaultFactor)

	got := table.Mono('G')
	assert.Equal(t, got, math.Trunc(got), "integer mode must produce integral values")
	assert.InDelta(t, 57.02146*DefaultFactor, got, 1)
}

func TestTable_Sums(t *testing.T) {
	table, _ := NewTable(Float, 1)

	want := table.Mono('M') + table.Mono('K')
	assert.InDelta(t, want, table.MonoSum("MK"), 1e-9)
	assert.Zero(t, table.MonoSum(""))
	assert.Positive(t, table.AvrgSum("MK"))
}

func TestTable_Water(t *testing.T) {
	table, _ := NewTable(Float, 1)
	assert.InDelta(t, 18.010565, table.MonoWater(), 1e-9)
	assert.Greater(t, table.AvrgWater(), table.MonoWater())
}

// Integer-scaled sums stay within one rounding step per residue of the
// scaled float sum.
func TestTable_IntFloatAgreement(t *testing.T) {
	intTable, _ := NewTable(Int, DefaultFactor)
	floatTable, _ := NewTable(Float, 1)

	sequence := "MKWVTFISLLFLFSSAYSRGVFRR"
	intSum := intTable.MonoSum(sequence)
	floatSum := floatTable.MonoSum(sequence) * DefaultFactor
	assert.InDelta(t, floatSum, intSum, float64(len(sequence)))
}
