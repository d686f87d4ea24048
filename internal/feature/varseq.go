package feature

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/embl"
	"github.com/inodb/protgraph/internal/pepgraph"
)

// applyVarSeq realises the entry's isoforms. Each non-displayed isoform with
// resolvable VSP records becomes a complete alternative start-to-end path:
// unmodified stretches share the canonical backbone, modified stretches are
// attached as sub-paths whose vertices carry the isoform accession and the
// residue's position within the isoform sequence.
//
// Returns the number of isoforms realised.
func applyVarSeq(g *pepgraph.Graph, entry *embl.Entry, varSeqs []embl.Feature, logger *zap.Logger) (int, error) {
	isoforms, err := parseIsoforms(entry.Comments)
	if err != nil {
		return 0, err
	}
	if len(isoforms) == 0 {
		return 0, nil
	}

	byID := make(map[string]embl.Feature, len(varSeqs))
	for _, f := range varSeqs {
		if f.ID != "" {
			byID[f.ID] = f
		}
	}

	realised := 0
	for _, iso := range isoforms {
		if iso.Displayed || len(iso.VSPs) == 0 {
			continue
		}
		if err := applyIsoform(g, iso, byID); err != nil {
			// A VSP record the feature table does not carry (or that no
			// longer resolves) skips this isoform, not the entry.
			logger.Debug("isoform skipped",
				zap.String("accession", g.Accession),
				zap.String("isoform", iso.ID),
				zap.Error(err))
			continue
		}
		realised++
	}
	return realised, nil
}

// applyIsoform splices the alternative sub-paths of one isoform.
func applyIsoform(g *pepgraph.Graph, iso Isoform, byID map[string]embl.Feature) error {
	features := make([]embl.Feature, 0, len(iso.VSPs))
	for _, id := range iso.VSPs {
		f, ok := byID[id]
		if !ok {
			return fmt.Errorf("isoform %s references missing feature %s: %w",
				iso.ID, id, pepgraph.ErrFeatureResolution)
		}
		features = append(features, f)
	}
	sort.Slice(features, func(i, j int) bool {
		return features[i].Location.NofuzzyStart < features[j].Location.NofuzzyStart
	})

	// Validate spans and notes first so a bad record leaves the graph untouched.
	lastEnd := 0
	alts := make([]string, len(features))
	for i, f := range features {
		a, b := span(f)
		if a < 1 || b > g.SequenceLength() || a > b {
			return fmt.Errorf("isoform %s span [%d,%d] outside sequence of length %d: %w",
				iso.ID, a, b, g.SequenceLength(), pepgraph.ErrFeatureResolution)
		}
		if a <= lastEnd {
			return fmt.Errorf("isoform %s has overlapping VAR_SEQ spans: %w",
				iso.ID, pepgraph.ErrFeatureResolution)
		}
		lastEnd = b
		_, alt, err := parseSubstitutionNote(f.Note)
		if err != nil {
			return err
		}
		alts[i] = alt
	}

	// offset tracks how far isoform positions have drifted from canonical
	// positions after the substitutions applied so far.
	offset := 0
	for i, f := range features {
		a, b := span(f)
		alt := alts[i]

		prev, err := g.VertexAt(a - 1)
		if err != nil {
			return err
		}
		next, err := g.VertexAt(b + 1)
		if err != nil {
			return err
		}

		q := pepgraph.Qualifier{
			Kind:        pepgraph.KindVarSeq,
			Description: f.Note,
			FeatureID:   f.ID,
			Start:       a,
			End:         b,
		}
		spliceBranch(g, prev, next, alt, q, iso.ID, a+offset)
		offset += len(alt) - (b - a + 1)
	}
	return nil
}
