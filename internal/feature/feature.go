// Package feature applies SwissProt feature-table records to a peptide graph.
//
// Application order is fixed: VAR_SEQ first (isoforms may be referenced by
// later records), then the N-terminal skips INIT_MET and SIGNAL, then the
// generic substitutions VARIANT, MUTAGEN and CONFLICT, and finally the
// internal cleaved peptides PROPEP and PEPTIDE. Every applier only adds
// alternative branches, so the canonical backbone stays addressable
// throughout.
package feature

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/embl"
	"github.com/inodb/protgraph/internal/pepgraph"
)

// Config toggles individual feature kinds, mirroring the CLI skip flags.
type Config struct {
	Isoforms bool
	InitMet  bool
	Signal   bool
	Variants bool
}

// DefaultConfig applies every feature kind.
func DefaultConfig() Config {
	return Config{Isoforms: true, InitMet: true, Signal: true, Variants: true}
}

// Counts reports how many features of each kind were applied. A nil field
// means the kind was disabled for the run and its statistics column stays
// empty.
type Counts struct {
	Isoforms  *int
	InitMet   *int
	Signal    *int
	Variants  *int
	Mutagens  *int
	Conflicts *int
}

// ApplyAll applies the entry's feature table to the graph in the fixed order.
//
// A feature whose location falls outside the canonical sequence aborts the
// entry with an error wrapping pepgraph.ErrFeatureResolution. Features that
// reference isoform positions or unresolvable VSP records are skipped with a
// log line and do not fail the entry.
func ApplyAll(g *pepgraph.Graph, entry *embl.Entry, cfg Config, logger *zap.Logger) (Counts, error) {
	byType := entry.FeaturesByType()
	var counts Counts

	if cfg.Isoforms {
		n, err := applyVarSeq(g, entry, byType[embl.FtVarSeq], logger)
		if err != nil {
			return counts, err
		}
		counts.Isoforms = &n
	}

	if cfg.InitMet {
		n, err := applyEach(g, byType[embl.FtInitMet], applyInitMet, logger)
		if err != nil {
			return counts, err
		}
		counts.InitMet = &n
	}
	if cfg.Signal {
		n, err := applyEach(g, byType[embl.FtSignal], applySignal, logger)
		if err != nil {
			return counts, err
		}
		counts.Signal = &n
	}

	if cfg.Variants {
		n, err := applyEach(g, byType[embl.FtVariant], substitutionApplier(pepgraph.KindVariant), logger)
		if err != nil {
			return counts, err
		}
		counts.Variants = &n
	}
	nMut, err := applyEach(g, byType[embl.FtMutagen], substitutionApplier(pepgraph.KindMutagen), logger)
	if err != nil {
		return counts, err
	}
	counts.Mutagens = &nMut
	nCon, err := applyEach(g, byType[embl.FtConflict], substitutionApplier(pepgraph.KindConflict), logger)
	if err != nil {
		return counts, err
	}
	counts.Conflicts = &nCon

	if _, err := applyEach(g, byType[embl.FtPropep], cleavedPeptideApplier(pepgraph.KindPropep), logger); err != nil {
		return counts, err
	}
	if _, err := applyEach(g, byType[embl.FtPeptide], cleavedPeptideApplier(pepgraph.KindPeptide), logger); err != nil {
		return counts, err
	}

	return counts, nil
}

// errSkipFeature marks a feature that cannot be applied to the canonical
// backbone but should not fail the entry (e.g. a variant scoped to an
// isoform position).
var errSkipFeature = errors.New("feature: skipped")

type applier func(g *pepgraph.Graph, f embl.Feature) error

// applyEach runs one applier per feature and counts successful applications.
func applyEach(g *pepgraph.Graph, features []embl.Feature, apply applier, logger *zap.Logger) (int, error) {
	applied := 0
	for _, f := range features {
		err := apply(g, f)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, errSkipFeature):
			logger.Debug("feature skipped",
				zap.String("accession", g.Accession),
				zap.String("type", f.Type),
				zap.Error(err))
		default:
			return applied, fmt.Errorf("%s feature of %s: %w", f.Type, g.Accession, err)
		}
	}
	return applied, nil
}

// span converts a feature location to 1-based inclusive sequence positions.
func span(f embl.Feature) (int, int) {
	return f.Location.NofuzzyStart + 1, f.Location.NofuzzyEnd
}
