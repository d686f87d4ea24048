package pipeline

import (
	"math/big"
	"strings"

	"github.com/inodb/protgraph/internal/feature"
	"github.com/inodb/protgraph/internal/stats"
)

// Record is one statistics row, produced by a worker after a graph has been
// fully processed and exported.
type Record struct {
	Accession   string
	EntryName   string
	Counts      feature.Counts
	NumCleaved  int
	Stats       stats.Result
	Description string
}

// shortDescription reduces a DE block to the leading protein name:
// "RecName: Full=Gelsolin; AltName: …" becomes "Gelsolin".
func shortDescription(description string) string {
	head := description
	if i := strings.IndexByte(head, ';'); i >= 0 {
		head = head[:i]
	}
	if i := strings.IndexByte(head, '='); i >= 0 {
		head = head[i+1:]
	}
	return strings.TrimSpace(head)
}

// formatBins renders a counter vector as literal list syntax, e.g. "[1, 3, 5]".
func formatBins(bins []*big.Int) string {
	if bins == nil {
		return ""
	}
	parts := make([]string, len(bins))
	for i, b := range bins {
		parts[i] = b.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
