package engine

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed motifs.yaml
var defaultLexiconYAML []byte

// MotifDefinition is one static catalog entry: a symbolic theme, the
// keywords that trigger it, and its fixed risk weight in [0,1].
// The catalog is configuration data, never derived from user records.
type MotifDefinition struct {
	Name     string   `yaml:"name" json:"name"`
	Risk     float64  `yaml:"risk" json:"risk"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Lexicon is a versioned motif catalog. Weights are stable across a
// scoring session; swapping lexicons between sessions is how the catalog
// evolves.
type Lexicon struct {
	Version string            `yaml:"version" json:"version"`
	Motifs  []MotifDefinition `yaml:"motifs" json:"motifs"`
}

// MotifRisk is one detected motif with its risk weight.
type MotifRisk struct {
	Name string  `json:"name"`
	Risk float64 `json:"risk"`
}

// MotifAnalysis is the result of scanning one canonical text.
type MotifAnalysis struct {
	Motifs  []string    `json:"motifs"`
	Risks   []MotifRisk `json:"risks"`
	AvgRisk float64     `json:"avg_risk"`
}

var defaultLexicon = sync.OnceValue(func() Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		// The embedded catalog is validated by tests; a parse failure
		// here is a build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded motif lexicon invalid: %v", err))
	}
	return lex
})

// DefaultLexicon returns the embedded motif catalog.
func DefaultLexicon() Lexicon {
	return defaultLexicon()
}

// ParseLexicon parses a YAML motif catalog.
func ParseLexicon(data []byte) (Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(lex.Motifs) == 0 {
		return Lexicon{}, fmt.Errorf("lexicon contains no motifs")
	}
	for _, m := range lex.Motifs {
		if m.Name == "" || len(m.Keywords) == 0 {
			return Lexicon{}, fmt.Errorf("motif %q: name and keywords are required", m.Name)
		}
		if m.Risk < 0 || m.Risk > 1 {
			return Lexicon{}, fmt.Errorf("motif %q: risk %v outside [0,1]", m.Name, m.Risk)
		}
	}
	return lex, nil
}

// LoadLexiconFile loads a motif catalog override from disk.
func LoadLexiconFile(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

// ExtractMotifs scans the lowercased text for each motif's keywords.
// A motif counts once no matter how many of its keywords match; AvgRisk is
// the mean risk of found motifs, 0 when none. Results follow catalog order,
// keeping explanations reproducible and auditable; this is deliberately a
// keyword lexicon, not a learned classifier.
func (lex Lexicon) ExtractMotifs(text string) MotifAnalysis {
	analysis := MotifAnalysis{
		Motifs: []string{},
		Risks:  []MotifRisk{},
	}
	if text == "" {
		return analysis
	}

	lowered := strings.ToLower(text)
	var totalRisk float64

	for _, motif := range lex.Motifs {
		for _, keyword := range motif.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				analysis.Motifs = append(analysis.Motifs, motif.Name)
				analysis.Risks = append(analysis.Risks, MotifRisk{Name: motif.Name, Risk: motif.Risk})
				totalRisk += motif.Risk
				break
			}
		}
	}

	if len(analysis.Risks) > 0 {
		analysis.AvgRisk = totalRisk / float64(len(analysis.Risks))
	}
	return analysis
}

// SharedMotifs returns the motifs detected in both texts, in catalog order.
func (lex Lexicon) SharedMotifs(a, b string) []string {
	inB := make(map[string]struct{})
	for _, name := range lex.ExtractMotifs(b).Motifs {
		inB[name] = struct{}{}
	}

	shared := []string{}
	for _, name := range lex.ExtractMotifs(a).Motifs {
		if _, ok := inB[name]; ok {
			shared = append(shared, name)
		}
	}
	return shared
}
