package pipeline

import (
	"context"
	"encoding/csv"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/digest"
	"github.com/inodb/protgraph/internal/feature"
	"github.com/inodb/protgraph/internal/mass"
	"github.com/inodb/protgraph/internal/stats"
)

const flatFile = `ID   ONE_HUMAN               Reviewed;          4 AA.
AC   P00001;
DE   RecName: Full=Protein one;
FT   VARIANT         2
FT                   /note="C -> G"
SQ   SEQUENCE   4 AA;  400 MW;  0000000000000000 CRC64;
     ACDE
//
ID   TWO_HUMAN               Reviewed;          4 AA.
AC   P00002;
DE   RecName: Full=Protein two;
SQ   SEQUENCE   4 AA;  400 MW;  0000000000000000 CRC64;
     MKAP
//
`

func testOptions(t *testing.T, files []string, csvPath string) Options {
	t.Helper()
	table, warnings := mass.NewTable(mass.Int, mass.DefaultFactor)
	require.Empty(t, warnings)
	return Options{
		Files:      files,
		NumWorkers: 2,
		Features:   feature.DefaultConfig(),
		Digestion:  digest.Trypsin,
		MassTable:  table,
		Stats: stats.Options{
			NumPaths:      true,
			Miscleavages:  true,
			Hops:          true,
			FeatureOrigin: true,
		},
		VerifyGraph: true,
		OutputCSV:   csvPath,
		Logger:      zap.NewNop(),
	}
}

func writeFlatFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entries.dat")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func rowByAccession(rows [][]string, accession string) []string {
	for _, row := range rows[1:] {
		if row[0] == accession {
			return row
		}
	}
	return nil
}

func TestRun_EndToEnd(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "statistics.csv")
	opts := testOptions(t, []string{writeFlatFile(t, flatFile)}, csvPath)

	require.NoError(t, Run(context.Background(), opts))

	rows := readCSV(t, csvPath)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	one := rowByAccession(rows, "P00001")
	require.NotNil(t, one)
	assert.Equal(t, "ONE_HUMAN", one[1])
	assert.Equal(t, "1", one[5], "one variant applied")
	assert.Equal(t, "0", one[6], "no tryptic sites in ACDE/AGDE")
	assert.Equal(t, "2", one[9], "two paths")
	assert.Equal(t, "[2]", one[10], "both paths cleave nothing")
	assert.Equal(t, "Protein one", one[12])

	two := rowByAccession(rows, "P00002")
	require.NotNil(t, two)
	assert.Equal(t, "0", two[5])
	assert.Equal(t, "1", two[6], "K before A cleaves")
	assert.Equal(t, "1", two[9])
}

func TestRun_SkipsInvalidEntry(t *testing.T) {
	// The first entry carries a residue outside the alphabet and must be
	// skipped without failing the run.
	bad := `ID   BAD_HUMAN               Reviewed;          4 AA.
AC   P99999;
DE   RecName: Full=Broken;
SQ   SEQUENCE   4 AA;  400 MW;  0000000000000000 CRC64;
     AC1E
//
` + flatFile
	csvPath := filepath.Join(t.TempDir(), "statistics.csv")
	opts := testOptions(t, []string{writeFlatFile(t, bad)}, csvPath)

	require.NoError(t, Run(context.Background(), opts))

	rows := readCSV(t, csvPath)
	require.Len(t, rows, 3)
	assert.Nil(t, rowByAccession(rows, "P99999"))
	assert.NotNil(t, rowByAccession(rows, "P00001"))
	assert.NotNil(t, rowByAccession(rows, "P00002"))
}

func TestRun_ExcludesAccessions(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "statistics.csv")
	opts := testOptions(t, []string{writeFlatFile(t, flatFile)}, csvPath)
	opts.ExcludeAccessions = map[string]bool{"P00001": true}

	require.NoError(t, Run(context.Background(), opts))

	rows := readCSV(t, csvPath)
	require.Len(t, rows, 2)
	assert.Nil(t, rowByAccession(rows, "P00001"))
}

func TestRun_UnwritableCSV(t *testing.T) {
	opts := testOptions(t, []string{writeFlatFile(t, flatFile)}, filepath.Join(t.TempDir(), "missing", "statistics.csv"))
	assert.Error(t, Run(context.Background(), opts))
}

func TestUnboundedQueue_PreservesOrder(t *testing.T) {
	q := newUnbounded[int]()
	const n = 500
	for i := 0; i < n; i++ {
		q.in <- i
	}
	close(q.in)

	for i := 0; i < n; i++ {
		v, ok := <-q.out
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := <-q.out
	assert.False(t, ok)
}

func TestShortDescription(t *testing.T) {
	assert.Equal(t, "Gelsolin", shortDescription("RecName: Full=Gelsolin; AltName: Full=Actin-depolymerizing factor;"))
	assert.Equal(t, "plain text", shortDescription("plain text"))
	assert.Equal(t, "", shortDescription(""))
}

func TestFormatBins(t *testing.T) {
	assert.Equal(t, "", formatBins(nil))
	assert.Equal(t, "[1, 3, 5]", formatBins([]*big.Int{big.NewInt(1), big.NewInt(3), big.NewInt(5)}))
}
