// Package rules externalizes validation policy from mechanism: evidence
// patterns, intent pattern sets and the fallback catalog are data loaded at
// startup, not code. A default rule set for the travel-expense regulation
// domain is embedded so the engine works out of the box.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// PatternSpec is one weighted pattern of an intent definition. When Weight is
// omitted, a length-derived weight is used so longer, more specific patterns
// dominate shorter generic ones.
type PatternSpec struct {
	Pattern string  `yaml:"pattern"`
	Weight  float64 `yaml:"weight,omitempty"`
}

// IntentSpec declares one classifiable intent. Registration order matters:
// the first-registered intent wins score ties.
type IntentSpec struct {
	Name     string        `yaml:"name"`
	Patterns []PatternSpec `yaml:"patterns"`
}

// TopicSpec declares a secondary topic recognized inside a query, scanned in
// declaration order.
type TopicSpec struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// FallbackSpec is one canned, non-fabricated response.
type FallbackSpec struct {
	Intent string `yaml:"intent"`
	Topic  string `yaml:"topic,omitempty"`
	Text   string `yaml:"text"`
}

// file is the on-disk shape of a rule set.
type file struct {
	Normalizer float64             `yaml:"normalizer,omitempty"`
	Intents    []IntentSpec        `yaml:"intents"`
	Evidence   map[string][]string `yaml:"evidence"`
	Topics     []TopicSpec         `yaml:"topics"`
	Fallbacks  []FallbackSpec      `yaml:"fallbacks"`
}

// CompiledIntent is an IntentSpec with its patterns compiled.
type CompiledIntent struct {
	Name     string
	Patterns []CompiledPattern
}

// CompiledPattern pairs a compiled regexp with its scoring weight.
type CompiledPattern struct {
	Expr   *regexp.Regexp
	Weight float64
}

// RuleSet is a compiled, immutable rule table shared by the classifier, the
// response validator and the fallback composer. Safe for concurrent use.
type RuleSet struct {
	normalizer float64
	intents    []CompiledIntent
	evidence   map[string][]*regexp.Regexp
	catalog    *Catalog
}

// Load reads and compiles a rule set from a YAML file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse compiles a rule set from YAML bytes. Every pattern is compiled
// eagerly so a bad rule fails startup, not a request.
func Parse(data []byte) (*RuleSet, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid rules yaml: %w", err)
	}

	rs := &RuleSet{
		normalizer: f.Normalizer,
		evidence:   make(map[string][]*regexp.Regexp),
	}
	if rs.normalizer <= 0 {
		rs.normalizer = DefaultNormalizer
	}

	for _, spec := range f.Intents {
		if spec.Name == "" {
			return nil, fmt.Errorf("intent with empty name")
		}
		ci := CompiledIntent{Name: spec.Name}
		for _, p := range spec.Patterns {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("intent %q: bad pattern %q: %w", spec.Name, p.Pattern, err)
			}
			weight := p.Weight
			if weight <= 0 {
				weight = defaultWeight(p.Pattern)
			}
			ci.Patterns = append(ci.Patterns, CompiledPattern{Expr: re, Weight: weight})
		}
		rs.intents = append(rs.intents, ci)
	}

	for intent, patterns := range f.Evidence {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("evidence for %q: bad pattern %q: %w", intent, p, err)
			}
			rs.evidence[intent] = append(rs.evidence[intent], re)
		}
	}

	catalog, err := newCatalog(f.Topics, f.Fallbacks)
	if err != nil {
		return nil, err
	}
	rs.catalog = catalog

	return rs, nil
}

// Default returns the embedded rule set. It panics only if the embedded file
// is itself broken, which is a programming error caught by tests.
func Default() *RuleSet {
	rs, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("rules: embedded defaults are invalid: %v", err))
	}
	return rs
}

// DefaultNormalizer divides the raw intent score to produce a confidence.
const DefaultNormalizer = 6.0

// defaultWeight derives a weight from pattern length, clamped to [1, 4].
func defaultWeight(pattern string) float64 {
	w := float64(len(pattern)) / 12
	if w < 1 {
		w = 1
	}
	if w > 4 {
		w = 4
	}
	return w
}

// Normalizer returns the score normalizing constant.
func (r *RuleSet) Normalizer() float64 {
	return r.normalizer
}

// Intents returns the compiled intent definitions in registration order.
func (r *RuleSet) Intents() []CompiledIntent {
	return r.intents
}

// EvidenceFor returns the required-evidence patterns for an intent, or nil
// when the intent carries no evidence obligation.
func (r *RuleSet) EvidenceFor(intent string) []*regexp.Regexp {
	return r.evidence[intent]
}

// Catalog returns the fallback catalog.
func (r *RuleSet) Catalog() *Catalog {
	return r.catalog
}
