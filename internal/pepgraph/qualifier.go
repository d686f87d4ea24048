package pepgraph

// Feature kinds that can appear as edge qualifiers. The strings match the
// feature table keys of SwissProt entries.
const (
	KindVarSeq   = "VAR_SEQ"
	KindInitMet  = "INIT_MET"
	KindSignal   = "SIGNAL"
	KindVariant  = "VARIANT"
	KindMutagen  = "MUTAGEN"
	KindConflict = "CONFLICT"
	KindPropep   = "PROPEP"
	KindPeptide  = "PEPTIDE"
)

// Qualifier tags an edge with the feature that created it. Every edge a
// feature applier adds carries exactly one qualifier.
type Qualifier struct {
	Kind        string
	Description string
	// FeatureID is the feature-table identifier (e.g. VAR_012345) when the
	// entry carries one.
	FeatureID string
	// Start and End are the canonical positions the feature covered,
	// 1-based inclusive.
	Start int
	End   int
}

// equalQualifiers reports whether two qualifier lists contain the same tags in
// the same order. Appliers attach qualifiers deterministically, so ordered
// comparison doubles as set comparison.
func equalQualifiers(a, b []Qualifier) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EqualQualifiers is the exported form used by the simplifier and verifier.
func EqualQualifiers(a, b []Qualifier) bool { return equalQualifiers(a, b) }

// HasKind reports whether any qualifier in the list is of the given kind.
func HasKind(qs []Qualifier, kind string) bool {
	for _, q := range qs {
		if q.Kind == kind {
			return true
		}
	}
	return false
}
