package rules

import (
	"fmt"
	"strings"
)

// InsufficientInfoMarker appears verbatim in every generic fallback so
// callers (and tests) can recognize an explicitly-uncertain answer.
const InsufficientInfoMarker = "insufficient information"

// genericFallback is served when no catalog entry matches. It is labeled as
// uncertain rather than synthesizing a plausible-looking value.
const genericFallback = "I could not find enough verified information in the document corpus " +
	"to answer this question reliably (" + InsufficientInfoMarker + "). " +
	"Please rephrase the question or consult the underlying regulations directly."

// Catalog holds the canned, non-fabricated responses served when validation
// cannot be satisfied, keyed by (intent, topic).
type Catalog struct {
	topics  []TopicSpec
	entries map[string]map[string]string // intent -> topic -> text
}

func newCatalog(topics []TopicSpec, fallbacks []FallbackSpec) (*Catalog, error) {
	c := &Catalog{
		topics:  topics,
		entries: make(map[string]map[string]string),
	}

	for _, fb := range fallbacks {
		if fb.Intent == "" {
			return nil, fmt.Errorf("fallback with empty intent")
		}
		if strings.TrimSpace(fb.Text) == "" {
			return nil, fmt.Errorf("fallback for (%s, %s) has empty text", fb.Intent, fb.Topic)
		}
		byTopic, ok := c.entries[fb.Intent]
		if !ok {
			byTopic = make(map[string]string)
			c.entries[fb.Intent] = byTopic
		}
		byTopic[fb.Topic] = strings.TrimSpace(fb.Text)
	}

	return c, nil
}

// DetectTopic scans the query for the first matching topic keyword, in
// declaration order. Returns "" when no topic matches.
func (c *Catalog) DetectTopic(query string) string {
	q := strings.ToLower(query)
	for _, topic := range c.topics {
		for _, kw := range topic.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				return topic.Name
			}
		}
	}
	return ""
}

// Lookup resolves the canned response for (intent, topic). Resolution order:
// exact (intent, topic), then (intent, "") as the intent's own generic entry,
// then the global insufficient-information message. It never fails.
func (c *Catalog) Lookup(intent, topic string) string {
	if byTopic, ok := c.entries[intent]; ok {
		if text, ok := byTopic[topic]; ok {
			return text
		}
		if text, ok := byTopic[""]; ok {
			return text
		}
	}
	return genericFallback
}

// Generic returns the global insufficient-information message.
func (c *Catalog) Generic() string {
	return genericFallback
}
