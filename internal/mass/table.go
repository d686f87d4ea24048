// Package mass provides the residue mass table used for edge weight
// annotation, in either integer-scaled or floating-point representation.
package mass

import (
	"fmt"
	"math"
	"strings"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// Kind selects the scalar representation of the table.
type Kind int

const (
	// Int scales every mass by the configured factor and rounds once per
	// residue, making sums exact and hashable.
	Int Kind = iota
	// Float keeps masses in double precision.
	Float
)

// DefaultFactor is the integer-mode scale factor.
const DefaultFactor = 1e9

// ParseKind reads the --mass_dict_type flag value.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	default:
		return 0, fmt.Errorf("unknown mass dict type %q (want int or float)", s)
	}
}

func (k Kind) String() string {
	if k == Int {
		return "int"
	}
	return "float"
}

// Monoisotopic residue masses (amino acid minus water), in Dalton.
var monoMasses = map[byte]float64{
	'G': 57.02146, 'A': 71.03711, 'S': 87.03203, 'P': 97.05276,
	'V': 99.06841, 'T': 101.04768, 'C': 103.00919, 'L': 113.08406,
	'I': 113.08406, 'N': 114.04293, 'D': 115.02694, 'Q': 128.05858,
	'K': 128.09496, 'E': 129.04259, 'M': 131.04049, 'H': 137.05891,
	'F': 147.06841, 'R': 156.10111, 'Y': 163.06333, 'W': 186.07931,
	// Selenocysteine, pyrrolysine and the ambiguity codes.
	'U': 150.95364, 'O': 237.14773, 'B': 114.53494, 'Z': 128.55059,
	'J': 113.08406, 'X': 0,
}

// Average residue masses, in Dalton.
var avrgMasses = map[byte]float64{
	'G': 57.0519, 'A': 71.0788, 'S': 87.0782, 'P': 97.1167,
	'V': 99.1326, 'T': 101.1051, 'C': 103.1388, 'L': 113.1594,
	'I': 113.1594, 'N': 114.1038, 'D': 115.0886, 'Q': 128.1307,
	'K': 128.1741, 'E': 129.1155, 'M': 131.1926, 'H': 137.1411,
	'F': 147.1766, 'R': 156.1875, 'Y': 163.1760, 'W': 186.2132,
	'U': 150.0388, 'O': 237.3018, 'B': 114.5962, 'Z': 128.6231,
	'J': 113.1594, 'X': 0,
}

const (
	monoWater = 18.010565
	avrgWater = 18.01528
)

// Table maps residues to masses in the configured representation. It is
// immutable after construction and safe to share across workers.
type Table struct {
	kind   Kind
	factor float64
	mono   [26]float64
	avrg   [26]float64
	water  [2]float64
}

// NewTable builds the mass table. In integer mode, any residue whose scaled
// mass does not round cleanly is reported as a warning wrapping
// pepgraph.ErrArithmetic; the rounded value is used regardless.
func NewTable(kind Kind, factor float64) (*Table, []error) {
	t := &Table{kind: kind, factor: factor}
	var warnings []error

	convert := func(m float64, residue byte, avg bool) float64 {
		if kind == Float {
			return m
		}
		scaled := m * factor
		rounded := math.Round(scaled)
		if math.Abs(scaled-rounded) > 1e-6*math.Max(1, math.Abs(scaled)) {
			warnings = append(warnings, fmt.Errorf("residue %c (avg=%t) scaled mass %v: %w",
				residue, avg, scaled, pepgraph.ErrArithmetic))
		}
		return rounded
	}

	for r := byte('A'); r <= 'Z'; r++ {
		if m, ok := monoMasses[r]; ok {
			t.mono[r-'A'] = convert(m, r, false)
		}
		if m, ok := avrgMasses[r]; ok {
			t.avrg[r-'A'] = convert(m, r, true)
		}
	}
	t.water[0] = convert(monoWater, ' ', false)
	t.water[1] = convert(avrgWater, ' ', true)
	return t, warnings
}

// Kind returns the scalar representation of the table.
func (t *Table) Kind() Kind { return t.kind }

// Factor returns the integer-mode scale factor.
func (t *Table) Factor() float64 { return t.factor }

// Mono returns the monoisotopic mass of a single residue. Sentinel residues
// weigh nothing.
func (t *Table) Mono(r byte) float64 {
	if r < 'A' || r > 'Z' {
		return 0
	}
	return t.mono[r-'A']
}

// Avrg returns the average mass of a single residue.
func (t *Table) Avrg(r byte) float64 {
	if r < 'A' || r > 'Z' {
		return 0
	}
	return t.avrg[r-'A']
}

// MonoSum sums the monoisotopic masses over a residue run.
func (t *Table) MonoSum(residues string) float64 {
	var sum float64
	for i := 0; i < len(residues); i++ {
		sum += t.Mono(residues[i])
	}
	return sum
}

// AvrgSum sums the average masses over a residue run.
func (t *Table) AvrgSum(residues string) float64 {
	var sum float64
	for i := 0; i < len(residues); i++ {
		sum += t.Avrg(residues[i])
	}
	return sum
}

// MonoWater returns the mass of one water molecule, for terminal corrections
// when a residue run is reported as a free peptide.
func (t *Table) MonoWater() float64 { return t.water[0] }

// AvrgWater returns the average-mass water correction.
func (t *Table) AvrgWater() float64 { return t.water[1] }
