package feature

import (
	"fmt"
	"strings"

	"github.com/inodb/protgraph/internal/embl"
	"github.com/inodb/protgraph/internal/pepgraph"
)

// substitutionApplier applies VARIANT, MUTAGEN and CONFLICT records: a
// parallel branch from the vertex before the feature span to the vertex after
// it, traversing new vertices for the replacement residues. An empty
// replacement yields a bare bypass edge (deletion).
func substitutionApplier(kind string) applier {
	return func(g *pepgraph.Graph, f embl.Feature) error {
		a, b := span(f)
		if a < 1 || b > g.SequenceLength() || a > b {
			return fmt.Errorf("span [%d,%d] outside sequence of length %d: %w",
				a, b, g.SequenceLength(), pepgraph.ErrFeatureResolution)
		}

		ref, alt, err := parseSubstitutionNote(f.Note)
		if err != nil {
			return err
		}

		// Records scoped to an isoform describe positions on the isoform
		// sequence, which the canonical backbone cannot resolve.
		if isIsoformScoped(f.Note) && ref != "" && !matchesCanonical(g, a, b, ref) {
			return fmt.Errorf("%s targets isoform positions: %w", kind, errSkipFeature)
		}
		if ref != "" && !matchesCanonical(g, a, b, ref) {
			return fmt.Errorf("reference residues %q do not match positions [%d,%d]: %w",
				ref, a, b, pepgraph.ErrFeatureResolution)
		}

		prev, err := g.VertexAt(a - 1)
		if err != nil {
			return err
		}
		next, err := g.VertexAt(b + 1)
		if err != nil {
			return err
		}

		q := pepgraph.Qualifier{
			Kind:        kind,
			Description: f.Note,
			FeatureID:   f.ID,
			Start:       a,
			End:         b,
		}
		spliceBranch(g, prev, next, alt, q, "", 0)
		return nil
	}
}

// spliceBranch adds a parallel branch prev -> … -> next realising the
// replacement residues, every branch edge tagged with the qualifier. With an
// empty replacement the branch degenerates to a single bypass edge. Vertices
// created for an isoform carry the isoform accession and the 1-based position
// of their residue in the isoform sequence, counted from isoPos.
func spliceBranch(g *pepgraph.Graph, prev, next pepgraph.VertexID, replacement string, q pepgraph.Qualifier, isoAccession string, isoPos int) {
	tail := prev
	for i := 0; i < len(replacement); i++ {
		v := pepgraph.Vertex{
			Aminoacid:        string(replacement[i]),
			Position:         pepgraph.NoPosition,
			Accession:        g.Accession,
			IsoformAccession: isoAccession,
			IsoformPosition:  pepgraph.NoPosition,
		}
		if isoAccession != "" {
			v.IsoformPosition = isoPos + i
		}
		id := g.AddVertex(v)
		g.AddEdge(pepgraph.Edge{From: tail, To: id, Qualifiers: []pepgraph.Qualifier{q}})
		tail = id
	}
	g.AddEdge(pepgraph.Edge{From: tail, To: next, Qualifiers: []pepgraph.Qualifier{q}})
}

// parseSubstitutionNote splits a feature note into reference and replacement
// residues. "Missing…" notes are deletions; "R -> Q (in strain A)" notes are
// substitutions. Notes with neither shape (e.g. plain descriptions) are
// rejected.
func parseSubstitutionNote(note string) (ref, alt string, err error) {
	text := strings.TrimSpace(note)
	if text == "" {
		return "", "", fmt.Errorf("substitution feature without note: %w", pepgraph.ErrInputInvalid)
	}
	if strings.HasPrefix(text, "Missing") {
		return "", "", nil
	}
	left, right, ok := strings.Cut(text, "->")
	if !ok {
		return "", "", fmt.Errorf("note %q is neither Missing nor a substitution: %w", note, pepgraph.ErrInputInvalid)
	}
	ref, err = cleanResidues(left)
	if err != nil {
		return "", "", fmt.Errorf("note %q: %w", note, err)
	}
	alt, err = cleanResidues(right)
	if err != nil {
		return "", "", fmt.Errorf("note %q: %w", note, err)
	}
	if alt == "" {
		return "", "", fmt.Errorf("note %q has no replacement residues: %w", note, pepgraph.ErrInputInvalid)
	}
	return ref, alt, nil
}

// cleanResidues extracts the residue letters from one side of a substitution
// note. Commentary follows in parentheses (VARIANT, CONFLICT) or after a
// colon (MUTAGEN) and is cut off; whatever remains must be bare residue
// letters.
func cleanResidues(s string) (string, error) {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
		default:
			return "", fmt.Errorf("unparseable residues %q: %w", strings.TrimSpace(s), pepgraph.ErrInputInvalid)
		}
	}
	return b.String(), nil
}

func isIsoformScoped(note string) bool {
	return strings.Contains(strings.ToLower(note), "in isoform")
}

// matchesCanonical reports whether the canonical residues at [a,b] equal the
// reference residues of a substitution note.
func matchesCanonical(g *pepgraph.Graph, a, b int, ref string) bool {
	if b-a+1 != len(ref) {
		return false
	}
	for i := 0; i < len(ref); i++ {
		v, err := g.VertexAt(a + i)
		if err != nil || g.Vertex(v).Aminoacid != string(ref[i]) {
			return false
		}
	}
	return true
}
