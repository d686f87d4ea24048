package feature

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inodb/protgraph/internal/pepgraph"
)

// ReplacementRules maps a residue letter to its user-defined substitutes,
// e.g. X -> {A, B, C}. Applied before digestion so the substitutes take part
// in cleavage rules.
type ReplacementRules map[string][]string

// ParseRule reads one --replace_aa flag value of the form "X:A,B,C".
func ParseRule(rules ReplacementRules, s string) error {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("replacement rule %q, want FROM:TO[,TO…]: %w", s, pepgraph.ErrInputInvalid)
	}
	from = strings.ToUpper(strings.TrimSpace(from))
	if len(from) != 1 || from[0] < 'A' || from[0] > 'Z' {
		return fmt.Errorf("replacement source %q is not a residue letter: %w", from, pepgraph.ErrInputInvalid)
	}
	for _, target := range strings.Split(to, ",") {
		target = strings.ToUpper(strings.TrimSpace(target))
		if target == "" {
			continue
		}
		rules[from] = append(rules[from], target)
	}
	return nil
}

// LoadRulesFile reads replacement rules from a YAML mapping of residue letter
// to a list of substitutes.
func LoadRulesFile(path string) (ReplacementRules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replacement rules: %w", err)
	}
	var parsed map[string][]string
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse replacement rules %s: %w", path, err)
	}
	rules := make(ReplacementRules, len(parsed))
	for from, targets := range parsed {
		for _, target := range targets {
			if err := ParseRule(rules, from+":"+target); err != nil {
				return nil, err
			}
		}
	}
	return rules, nil
}

// ReplaceAA applies the replacement rules: for every vertex whose residue
// matches a rule source, one parallel alternative per substitute is spliced
// between the vertex's predecessors and successors. Returns the number of
// alternatives added.
func ReplaceAA(g *pepgraph.Graph, rules ReplacementRules) int {
	if len(rules) == 0 {
		return 0
	}

	added := 0
	// The vertex list is fixed up front: alternatives must not themselves be
	// replaced again.
	for _, v := range g.VertexIDs() {
		targets, ok := rules[g.Vertex(v).Aminoacid]
		if !ok || g.IsSentinel(v) {
			continue
		}
		ins := append([]pepgraph.EdgeID(nil), g.InEdges(v)...)
		outs := append([]pepgraph.EdgeID(nil), g.OutEdges(v)...)

		for _, target := range sortedTargets(targets) {
			chain := make([]pepgraph.VertexID, 0, len(target))
			for i := 0; i < len(target); i++ {
				chain = append(chain, g.AddVertex(pepgraph.Vertex{
					Aminoacid:       string(target[i]),
					Position:        pepgraph.NoPosition,
					Accession:       g.Accession,
					IsoformPosition: pepgraph.NoPosition,
				}))
			}
			for i := 0; i+1 < len(chain); i++ {
				g.AddEdge(pepgraph.Edge{From: chain[i], To: chain[i+1]})
			}
			// Mirror the replaced vertex's wiring, keeping each neighbouring
			// edge's qualifiers so the alternative stays on the same variant
			// branches.
			for _, eid := range ins {
				e := g.Edge(eid)
				g.AddEdge(pepgraph.Edge{
					From:       e.From,
					To:         chain[0],
					Qualifiers: append([]pepgraph.Qualifier(nil), e.Qualifiers...),
				})
			}
			for _, eid := range outs {
				e := g.Edge(eid)
				g.AddEdge(pepgraph.Edge{
					From:       chain[len(chain)-1],
					To:         e.To,
					Qualifiers: append([]pepgraph.Qualifier(nil), e.Qualifiers...),
				})
			}
			added++
		}
	}
	return added
}

func sortedTargets(targets []string) []string {
	out := append([]string(nil), targets...)
	sort.Strings(out)
	return out
}
