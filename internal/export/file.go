package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileConfig configures the per-protein file exporters.
type FileConfig struct {
	// Folder is the output directory.
	Folder string
	// InDirectories shards output into nested directories coded by accession,
	// keeping directories small when millions of proteins are exported.
	InDirectories bool
}

// outputPath returns the file path for one protein and creates the parent
// directories.
func (c FileConfig) outputPath(accession, ext string) (string, error) {
	dir := c.Folder
	if c.InDirectories {
		for _, r := range accession {
			dir = filepath.Join(dir, string(r))
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	return filepath.Join(dir, accession+ext), nil
}
