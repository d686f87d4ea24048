package feature

import (
	"fmt"
	"strings"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// Isoform is one entry of an ALTERNATIVE PRODUCTS comment block.
type Isoform struct {
	Name string
	// ID is the IsoId, e.g. P12345-2.
	ID string
	// VSPs lists the VAR_SEQ feature ids realising this isoform. Empty for
	// the displayed sequence and for isoforms described externally.
	VSPs []string
	// Displayed marks the canonical sequence itself.
	Displayed bool
}

// parseIsoforms extracts the isoform table from the entry's comments. Entries
// without an ALTERNATIVE PRODUCTS block yield an empty slice.
func parseIsoforms(comments []string) ([]Isoform, error) {
	var block string
	for _, c := range comments {
		if strings.HasPrefix(c, "ALTERNATIVE PRODUCTS") {
			block = c
			break
		}
	}
	if block == "" {
		return nil, nil
	}

	// The block is a sequence of Key=Value; pairs; every Name= starts a new
	// isoform record.
	text := strings.ReplaceAll(block, "\n", " ")
	var isoforms []Isoform
	var cur *Isoform
	for _, token := range strings.Split(text, ";") {
		token = strings.TrimSpace(token)
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			if cur != nil {
				isoforms = append(isoforms, *cur)
			}
			cur = &Isoform{Name: value}
		case "IsoId":
			if cur == nil {
				return nil, fmt.Errorf("IsoId before any isoform Name: %w", pepgraph.ErrInputInvalid)
			}
			// Secondary IsoIds may follow comma-separated; the first is primary.
			cur.ID = strings.TrimSpace(strings.Split(value, ",")[0])
		case "Sequence":
			if cur == nil {
				return nil, fmt.Errorf("Sequence before any isoform Name: %w", pepgraph.ErrInputInvalid)
			}
			switch value {
			case "Displayed":
				cur.Displayed = true
			case "External", "Not described":
				// nothing to realise
			default:
				for _, id := range strings.Split(value, ",") {
					id = strings.TrimSpace(id)
					if id != "" {
						cur.VSPs = append(cur.VSPs, id)
					}
				}
			}
		}
	}
	if cur != nil {
		isoforms = append(isoforms, *cur)
	}

	for _, iso := range isoforms {
		if iso.ID == "" {
			return nil, fmt.Errorf("isoform %q without IsoId: %w", iso.Name, pepgraph.ErrInputInvalid)
		}
	}
	return isoforms, nil
}
