// Package intent scores queries against per-intent pattern sets and extracts
// coarse entities from named capture groups.
package intent

import (
	"github.com/attestra/veritor/internal/rules"
)

// FallbackIntent is used when no pattern matches at all.
const FallbackIntent = "general"

// FallbackConfidence is the fixed low confidence of the fallback intent.
const FallbackConfidence = 0.25

// Result is the outcome of one classification.
type Result struct {
	Intent     string
	Confidence float64
	Entities   map[string][]string
}

// Classifier scores a query against registered intent pattern sets. Ties are
// broken by registration order: the first-registered intent wins. Safe for
// concurrent use once built.
type Classifier struct {
	intents    []rules.CompiledIntent
	normalizer float64
}

// New builds a classifier from a compiled rule set.
func New(rs *rules.RuleSet) *Classifier {
	return &Classifier{
		intents:    rs.Intents(),
		normalizer: rs.Normalizer(),
	}
}

// Classify scores the query against every intent. Score is the sum of the
// weights of all matched patterns; confidence is the score divided by the
// normalizing constant, clamped to [0,1]. Entities come from named capture
// groups of matching patterns.
func (c *Classifier) Classify(query string) Result {
	best := Result{
		Intent:     FallbackIntent,
		Confidence: FallbackConfidence,
		Entities:   map[string][]string{},
	}
	bestScore := 0.0

	for _, intent := range c.intents {
		score := 0.0
		entities := map[string][]string{}

		for _, p := range intent.Patterns {
			match := p.Expr.FindStringSubmatch(query)
			if match == nil {
				continue
			}
			score += p.Weight

			for i, name := range p.Expr.SubexpNames() {
				if name == "" || i >= len(match) || match[i] == "" {
					continue
				}
				entities[name] = append(entities[name], match[i])
			}
		}

		// Strictly-greater keeps the first-registered intent on ties.
		if score > bestScore {
			bestScore = score
			best.Intent = intent.Name
			best.Entities = entities
		}
	}

	if bestScore > 0 {
		confidence := bestScore / c.normalizer
		if confidence > 1 {
			confidence = 1
		}
		best.Confidence = confidence
	}

	return best
}
