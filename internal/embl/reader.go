package embl

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedEntry indicates a record that does not follow the SwissProt
// flat-file layout closely enough to be read.
var ErrMalformedEntry = errors.New("embl: malformed entry")

// Reader parses SwissProt entries from a flat-file stream.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps an uncompressed flat-file stream.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	// DE and CC blocks of large entries exceed the default token size.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: sc}
}

// Open opens a flat file for reading, transparently ungzipping *.gz paths.
// The returned closer owns the underlying file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &gzipFile{gz: gz, f: f}, nil
	}
	return f, nil
}

type gzipFile struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipFile) Close() error {
	gzErr := g.gz.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}

// Next returns the next entry, or io.EOF after the last record.
func (r *Reader) Next() (*Entry, error) {
	entry := &Entry{}
	seen := false
	var seq strings.Builder
	var desc []string
	var comments []string
	inSequence := false
	inTopic := false

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "//" {
			if !seen {
				continue
			}
			return r.finish(entry, seq.String(), desc, comments)
		}
		if len(line) < 2 {
			continue
		}
		seen = true

		if inSequence {
			if strings.HasPrefix(line, "     ") {
				seq.WriteString(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(line), " ", "")))
				continue
			}
			inSequence = false
		}

		code := line[:2]
		rest := ""
		if len(line) > 5 {
			rest = line[5:]
		}

		switch code {
		case "ID":
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				entry.EntryName = fields[0]
			}
		case "AC":
			for _, acc := range strings.Split(rest, ";") {
				acc = strings.TrimSpace(acc)
				if acc != "" {
					entry.Accessions = append(entry.Accessions, acc)
				}
			}
		case "DE":
			desc = append(desc, strings.TrimSpace(rest))
		case "CC":
			text := strings.TrimSpace(rest)
			if strings.HasPrefix(text, "-!-") {
				comments = append(comments, strings.TrimSpace(strings.TrimPrefix(text, "-!-")))
				inTopic = true
			} else if inTopic && len(comments) > 0 && !strings.HasPrefix(text, "---") {
				comments[len(comments)-1] += "\n" + text
			}
		case "FT":
			if err := r.parseFeatureLine(entry, line); err != nil {
				return nil, err
			}
		case "SQ":
			inSequence = true
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan flat file: %w", err)
	}
	if seen {
		// File ended without the trailing record separator.
		return r.finish(entry, seq.String(), desc, comments)
	}
	return nil, io.EOF
}

func (r *Reader) finish(entry *Entry, sequence string, desc, comments []string) (*Entry, error) {
	if len(entry.Accessions) == 0 {
		return nil, fmt.Errorf("entry %q has no accession: %w", entry.EntryName, ErrMalformedEntry)
	}
	entry.Sequence = sequence
	entry.Description = strings.Join(desc, " ")
	entry.Comments = comments
	return entry, nil
}

// parseFeatureLine handles one FT line, either a new feature
// ("FT   VARIANT         26" / "FT   SIGNAL          1..23") or a qualifier
// continuation ("FT                   /note=…").
func (r *Reader) parseFeatureLine(entry *Entry, line string) error {
	trimmed := strings.TrimSpace(line[2:])

	// New features carry their type in column 6; qualifier and continuation
	// lines are indented past it.
	if len(line) > 5 && line[5] != ' ' {
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			return fmt.Errorf("feature line %q has no location: %w", line, ErrMalformedEntry)
		}
		loc, err := parseLocation(fields[1])
		if err != nil {
			return fmt.Errorf("feature %s of %s: %w", fields[0], entry.Accession(), err)
		}
		entry.Features = append(entry.Features, Feature{Type: fields[0], Location: loc})
		return nil
	}

	if len(entry.Features) == 0 {
		return fmt.Errorf("feature qualifier before any feature: %w", ErrMalformedEntry)
	}
	f := &entry.Features[len(entry.Features)-1]
	switch {
	case strings.HasPrefix(trimmed, "/note="):
		f.Note = appendNote(f.Note, strings.Trim(strings.TrimPrefix(trimmed, "/note="), `"`))
	case strings.HasPrefix(trimmed, "/id="):
		f.ID = strings.Trim(strings.TrimPrefix(trimmed, "/id="), `"`)
	case !strings.HasPrefix(trimmed, "/"):
		// continuation of a wrapped /note value
		f.Note = appendNote(f.Note, strings.Trim(trimmed, `"`))
	}
	return nil
}

func appendNote(existing, more string) string {
	more = strings.TrimSuffix(more, `"`)
	if existing == "" {
		return more
	}
	return existing + " " + more
}

// parseLocation reads "26", "1..23" or fuzzy forms like "<1..?23" and strips
// the fuzziness, yielding a 0-based half-open interval.
func parseLocation(s string) (Location, error) {
	parse := func(tok string) (int, error) {
		tok = strings.TrimLeft(tok, "<>?")
		if tok == "" {
			return 0, fmt.Errorf("unbounded location %q: %w", s, ErrMalformedEntry)
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, fmt.Errorf("location %q: %w", s, ErrMalformedEntry)
		}
		return n, nil
	}

	if start, end, ok := strings.Cut(s, ".."); ok {
		a, err := parse(start)
		if err != nil {
			return Location{}, err
		}
		b, err := parse(end)
		if err != nil {
			return Location{}, err
		}
		return Location{NofuzzyStart: a - 1, NofuzzyEnd: b}, nil
	}
	p, err := parse(s)
	if err != nil {
		return Location{}, err
	}
	return Location{NofuzzyStart: p - 1, NofuzzyEnd: p}, nil
}
