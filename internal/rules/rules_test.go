package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestra/veritor/internal/rules"
)

func TestDefault_CompilesAndCovers(t *testing.T) {
	rs := rules.Default()

	require.NotEmpty(t, rs.Intents())
	assert.Equal(t, "allowance", rs.Intents()[0].Name, "allowance must be first-registered for tie-breaks")

	for _, intent := range rs.Intents() {
		assert.NotEmpty(t, intent.Patterns, "intent %s has no patterns", intent.Name)
	}

	// Every intent with an evidence obligation matches a realistic answer.
	evidenced := map[string]string{
		"allowance":   "The maximum daily allowance is 320.00 EUR.",
		"deadline":    "Claims must be filed within 14 days of return.",
		"eligibility": "Per § 3 of the regulation, trainees are covered.",
		"procedure":   "Submit form TR-12 per section 4.",
	}
	for intent, answer := range evidenced {
		patterns := rs.EvidenceFor(intent)
		require.NotEmpty(t, patterns, "no evidence rules for %s", intent)
		found := false
		for _, re := range patterns {
			if re.MatchString(answer) {
				found = true
				break
			}
		}
		assert.True(t, found, "evidence patterns for %s do not match %q", intent, answer)
	}
}

func TestParse_BadPatternFailsLoud(t *testing.T) {
	_, err := rules.Parse([]byte(`
intents:
  - name: broken
    patterns:
      - pattern: '([unclosed'
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestParse_EmptyIntentName(t *testing.T) {
	_, err := rules.Parse([]byte(`
intents:
  - name: ""
    patterns:
      - pattern: 'x'
`))
	require.Error(t, err)
}

func TestCatalog_TopicDetectionOrder(t *testing.T) {
	rs := rules.Default()
	cat := rs.Catalog()

	assert.Equal(t, "amount", cat.DetectTopic("what is the maximum daily allowance?"))
	assert.Equal(t, "procedure", cat.DetectTopic("how do I submit the claim?"))
	assert.Equal(t, "deadline", cat.DetectTopic("what is the deadline?"))
	assert.Equal(t, "", cat.DetectTopic("tell me about travel"))

	// "maximum" (amount) is declared before "submit" (procedure); first wins.
	assert.Equal(t, "amount", cat.DetectTopic("maximum to submit"))
}

func TestCatalog_LookupResolutionOrder(t *testing.T) {
	rs, err := rules.Parse([]byte(`
topics:
  - name: amount
    keywords: [amount]
fallbacks:
  - intent: allowance
    topic: amount
    text: specific amount answer
  - intent: allowance
    text: generic allowance answer
`))
	require.NoError(t, err)
	cat := rs.Catalog()

	assert.Equal(t, "specific amount answer", cat.Lookup("allowance", "amount"))
	assert.Equal(t, "generic allowance answer", cat.Lookup("allowance", "deadline"))
	assert.Contains(t, cat.Lookup("unknown", ""), "insufficient information")
}

func TestCatalog_NeverFabricatesFigures(t *testing.T) {
	// No canned entry may contain something that looks like a currency
	// amount: fallbacks must never ship a plausible but unverified value.
	rs := rules.Default()
	cat := rs.Catalog()

	for _, intent := range []string{"allowance", "procedure", "deadline", "eligibility"} {
		for _, topic := range []string{"", "amount", "procedure", "deadline"} {
			text := cat.Lookup(intent, topic)
			assert.NotRegexp(t, `\d+[.,]\d{2}`, text,
				"fallback for (%s,%s) contains a figure", intent, topic)
		}
	}
}
