// Package pipeline wires the producer/consumer runtime: one reader feeding a
// bounded entry queue, a pool of graph workers, and one statistics writer
// draining an unbounded queue into the CSV sink.
//
// Shutdown follows a stop-token protocol: the reader places one nil token per
// worker on the entry queue after the last entry; the supervisor places a
// single nil token on the statistics queue once every worker has exited.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/protgraph/internal/digest"
	"github.com/inodb/protgraph/internal/embl"
	"github.com/inodb/protgraph/internal/export"
	"github.com/inodb/protgraph/internal/feature"
	"github.com/inodb/protgraph/internal/mass"
	"github.com/inodb/protgraph/internal/pepgraph"
	"github.com/inodb/protgraph/internal/simplify"
	"github.com/inodb/protgraph/internal/stats"
	"github.com/inodb/protgraph/internal/verify"
	"github.com/inodb/protgraph/internal/weights"
)

// entryQueueSize bounds the entry queue, giving back-pressure against a
// reader that outpaces the workers.
const entryQueueSize = 1000

// Options configures one pipeline run.
type Options struct {
	// Files are the SwissProt flat files to read, in order.
	Files []string
	// TotalEntries, when positive, is the expected entry count across all
	// files and only improves progress reporting.
	TotalEntries int
	// ExcludeAccessions drops entries whose primary accession is listed.
	ExcludeAccessions map[string]bool

	// NumWorkers is the worker pool size; 0 means available CPUs minus the
	// one reserved for reading.
	NumWorkers int

	Features     feature.Config
	ReplaceRules feature.ReplacementRules
	Digestion    digest.Mode
	NoMerge      bool
	NoCollapse   bool
	WeightModes  weights.Modes
	MassTable    *mass.Table
	Stats        stats.Options
	VerifyGraph  bool

	// OutputCSV is the statistics file path, truncated on start.
	OutputCSV string

	// NewExporters builds the exporter set for one worker; nil means no
	// exporters. Each worker starts up and tears down its own set.
	NewExporters func(worker int) *export.Set

	Logger *zap.Logger
}

// Run executes the pipeline until all files are processed. Per-entry failures
// are logged and skipped; Run only returns an error for unrecoverable
// conditions (unreadable statistics sink, exporter start-up failure).
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	numWorkers := opts.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU() - 1
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	entryQueue := make(chan *embl.Entry, entryQueueSize)
	statsQueue := newUnbounded[*Record]()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer func() {
			// One stop token per worker, after the last real entry. On a
			// cancelled run the workers exit through their own context check.
			for i := 0; i < numWorkers; i++ {
				select {
				case entryQueue <- nil:
				case <-ctx.Done():
					return
				}
			}
		}()
		return readEntries(ctx, opts, entryQueue, logger.Named("reader"))
	})

	var workers sync.WaitGroup
	workerErrs := make([]error, numWorkers)
	for i := 0; i < numWorkers; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			workerErrs[id] = runWorker(ctx, id, opts, entryQueue, statsQueue.in, logger)
		}(i)
	}

	g.Go(func() error {
		workers.Wait()
		// All workers gone: stop the writer.
		statsQueue.in <- nil
		close(statsQueue.in)
		var errs []error
		for _, err := range workerErrs {
			if err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) == numWorkers {
			return fmt.Errorf("all workers failed: %w", errors.Join(errs...))
		}
		for _, err := range errs {
			logger.Warn("worker failed", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		return writeStatistics(statsQueue.out, opts.OutputCSV, opts.TotalEntries, logger.Named("writer"))
	})

	return g.Wait()
}

// readEntries streams all files into the entry queue.
func readEntries(ctx context.Context, opts Options, entryQueue chan<- *embl.Entry, logger *zap.Logger) error {
	read := 0
	for _, path := range opts.Files {
		rc, err := embl.Open(path)
		if err != nil {
			return err
		}
		reader := embl.NewReader(rc)
		for {
			entry, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				// A malformed record poisons the rest of its file; move on to
				// the next file.
				logger.Warn("abandoning file", zap.String("path", path), zap.Error(err))
				break
			}
			if opts.ExcludeAccessions[entry.Accession()] {
				continue
			}
			select {
			case entryQueue <- entry:
				read++
			case <-ctx.Done():
				rc.Close()
				return ctx.Err()
			}
		}
		rc.Close()
	}
	logger.Info("all entries read", zap.Int("entries", read))
	return nil
}

// runWorker consumes entries until the first stop token. Failures local to an
// entry are logged and skipped. The exporter set is torn down on every exit
// path.
func runWorker(ctx context.Context, id int, opts Options, entryQueue <-chan *embl.Entry, statsQueue chan<- *Record, logger *zap.Logger) error {
	logger = logger.Named("worker").With(zap.Int("worker", id))

	var exporters *export.Set
	if opts.NewExporters != nil {
		exporters = opts.NewExporters(id)
	} else {
		exporters = export.NewSet(logger)
	}
	if err := exporters.StartUp(ctx); err != nil {
		return err
	}
	defer func() {
		if err := exporters.TearDown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("exporter tear down", zap.Error(err))
		}
	}()

	for {
		var entry *embl.Entry
		select {
		case entry = <-entryQueue:
		case <-ctx.Done():
			return ctx.Err()
		}
		if entry == nil {
			return nil
		}

		record, err := processEntry(ctx, opts, entry, exporters)
		if err != nil {
			logSkip(logger, entry.Accession(), err)
			continue
		}
		statsQueue <- record
	}
}

// processEntry runs the full transformation pipeline for one entry.
func processEntry(ctx context.Context, opts Options, entry *embl.Entry, exporters *export.Set) (*Record, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	graph, err := pepgraph.NewCanonical(entry.Sequence, entry.Accession())
	if err != nil {
		return nil, err
	}

	counts, err := feature.ApplyAll(graph, entry, opts.Features, logger)
	if err != nil {
		return nil, err
	}

	feature.ReplaceAA(graph, opts.ReplaceRules)

	numCleaved := digest.Digest(graph, opts.Digestion)

	if !opts.NoMerge {
		simplify.MergeAminoacids(graph)
	}
	if !opts.NoCollapse {
		simplify.CollapseParallelEdges(graph)
	}

	if err := weights.Annotate(graph, opts.MassTable, opts.WeightModes); err != nil {
		return nil, err
	}

	result, err := stats.Compute(graph, opts.Stats)
	if err != nil {
		return nil, err
	}

	if opts.VerifyGraph {
		if err := verify.Verify(graph); err != nil {
			return nil, err
		}
	}

	if err := exporters.Export(ctx, graph); err != nil {
		return nil, err
	}

	return &Record{
		Accession:   entry.Accession(),
		EntryName:   entry.EntryName,
		Counts:      counts,
		NumCleaved:  numCleaved,
		Stats:       result,
		Description: shortDescription(entry.Description),
	}, nil
}

// logSkip records a skipped entry with its failure kind.
func logSkip(logger *zap.Logger, accession string, err error) {
	kind := "unexpected"
	switch {
	case errors.Is(err, pepgraph.ErrInputInvalid):
		kind = "input-invalid"
	case errors.Is(err, pepgraph.ErrFeatureResolution):
		kind = "feature-resolution"
	case errors.Is(err, pepgraph.ErrVerifyFailed):
		kind = "verify-failed"
	case errors.Is(err, pepgraph.ErrExporterFailure):
		kind = "exporter-failure"
	}
	logger.Warn("entry skipped",
		zap.String("accession", accession),
		zap.String("cause", kind),
		zap.Error(err))
}
