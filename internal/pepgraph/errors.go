package pepgraph

import "errors"

// Failure kinds recognised by the processing pipeline. Workers classify
// per-entry failures with errors.Is against these sentinels: all of them are
// local to one entry (log, skip, continue).
var (
	// ErrInputInvalid indicates a malformed entry: a residue outside the
	// alphabet, a feature location outside the sequence bounds, or a
	// malformed isoform comment.
	ErrInputInvalid = errors.New("pepgraph: invalid input")

	// ErrFeatureResolution indicates a feature that cannot be applied because
	// the graph no longer contains the positions it references.
	ErrFeatureResolution = errors.New("pepgraph: feature cannot be resolved")

	// ErrArithmetic indicates a mass that does not convert cleanly to the
	// configured integer representation. Treated as a warning by callers.
	ErrArithmetic = errors.New("pepgraph: mass does not round cleanly")

	// ErrVerifyFailed indicates a graph that violates its invariants after
	// transformation.
	ErrVerifyFailed = errors.New("pepgraph: graph verification failed")

	// ErrExporterFailure indicates an external sink rejected the graph.
	ErrExporterFailure = errors.New("pepgraph: exporter failure")
)
