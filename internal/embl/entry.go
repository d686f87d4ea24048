// Package embl reads UniProtKB/SwissProt flat-file entries (.dat or .txt,
// optionally gzipped) and exposes the fields the graph pipeline consumes.
package embl

// Feature table kinds consumed by the pipeline. Other kinds present in an
// entry are parsed and carried along untouched.
const (
	FtVarSeq   = "VAR_SEQ"
	FtInitMet  = "INIT_MET"
	FtSignal   = "SIGNAL"
	FtVariant  = "VARIANT"
	FtMutagen  = "MUTAGEN"
	FtConflict = "CONFLICT"
	FtPropep   = "PROPEP"
	FtPeptide  = "PEPTIDE"
)

// Location is a feature location with the fuzziness stripped.
// NofuzzyStart is 0-based inclusive, NofuzzyEnd exclusive, so a single-residue
// feature at sequence position p has NofuzzyStart=p-1, NofuzzyEnd=p.
type Location struct {
	NofuzzyStart int
	NofuzzyEnd   int
}

// Feature is one FT record of an entry.
type Feature struct {
	Type     string
	Location Location
	// Note is the /note qualifier text, e.g. "R -> Q (in strain A)" or
	// "Missing (in isoform 2)".
	Note string
	// ID is the /id qualifier (VAR_…, VSP_…, PRO_…) when present.
	ID string
}

// Entry is one SwissProt record.
type Entry struct {
	// Accessions lists all AC values; Accessions[0] is the primary accession.
	Accessions []string
	// EntryName is the ID-line mnemonic, e.g. ALBU_HUMAN.
	EntryName string
	// Description is the concatenated DE block.
	Description string
	// Sequence is the uppercase residue string from the SQ block.
	Sequence string
	// Features are all FT records in file order.
	Features []Feature
	// Comments holds one string per CC topic (the text after each "-!-").
	Comments []string
}

// Accession returns the primary accession, or "" for a malformed entry.
func (e *Entry) Accession() string {
	if len(e.Accessions) == 0 {
		return ""
	}
	return e.Accessions[0]
}

// FeaturesByType groups the entry's features by their feature-table kind.
func (e *Entry) FeaturesByType() map[string][]Feature {
	byType := make(map[string][]Feature)
	for _, f := range e.Features {
		byType[f.Type] = append(byType[f.Type], f)
	}
	return byType
}
