package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// csvHeader is the fixed column layout of the statistics file.
var csvHeader = []string{
	"Accession",
	"Entry ID",
	"Number of isoforms",
	"Has INIT_MET",
	"Has SIGNAL",
	"Number of variants",
	"Number of cleaved edges",
	"Number of nodes",
	"Number of edges",
	"Num of possible paths",
	"Num of possible paths (by miscleavages 0, 1, ...)",
	"Num of possible paths (by hops 0, 1, ...)",
	"Protein description",
}

// writeStatistics drains the statistics queue into the CSV file, overwriting
// any previous run. Rows arrive in completion order. A nil record is the stop
// token. Progress is logged on a coarse ticker.
func writeStatistics(out <-chan *Record, path string, totalEntries int, logger *zap.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create statistics file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write statistics header: %w", err)
	}

	progress := time.NewTicker(30 * time.Second)
	defer progress.Stop()

	written := 0
	for rec := range out {
		if rec == nil {
			break
		}
		if err := w.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("write statistics row for %s: %w", rec.Accession, err)
		}
		written++

		select {
		case <-progress.C:
			if totalEntries > 0 {
				logger.Info("progress", zap.Int("proteins", written), zap.Int("total", totalEntries))
			} else {
				logger.Info("progress", zap.Int("proteins", written))
			}
		default:
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush statistics: %w", err)
	}
	logger.Info("statistics written", zap.Int("proteins", written), zap.String("path", path))
	return nil
}

func csvRow(rec *Record) []string {
	row := []string{
		rec.Accession,
		rec.EntryName,
		formatCount(rec.Counts.Isoforms),
		formatCount(rec.Counts.InitMet),
		formatCount(rec.Counts.Signal),
		formatCount(rec.Counts.Variants),
		strconv.Itoa(rec.NumCleaved),
		strconv.Itoa(rec.Stats.NumNodes),
		strconv.Itoa(rec.Stats.NumEdges),
		"",
		formatBins(rec.Stats.NumPathsMiscleavages),
		formatBins(rec.Stats.NumPathsHops),
		rec.Description,
	}
	if rec.Stats.NumPaths != nil {
		row[9] = rec.Stats.NumPaths.String()
	}
	return row
}

func formatCount(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
