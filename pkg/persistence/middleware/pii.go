package middleware

import (
	"context"
	"regexp"

	"github.com/attestra/veritor/pkg/domain"
	"github.com/attestra/veritor/pkg/ports"
)

const piiMask = "***"

type piiMiddleware struct {
	next     ports.CheckpointStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks pattern matches (e.g.
// e-mail addresses, personnel numbers) in the persisted snapshot. The
// in-memory state stays untouched; only what is written out is scrubbed.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.CheckpointStore) ports.CheckpointStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, threadID string, snap *domain.CheckpointSnapshot) error {
	// Clone first: the engine may still hold the original snapshot state.
	cloned := *snap
	cloned.State = snap.State.Clone()
	m.scrubState(cloned.State)

	return m.next.Save(ctx, threadID, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, threadID string) (*domain.CheckpointSnapshot, error) {
	return m.next.Load(ctx, threadID)
}

func (m *piiMiddleware) Delete(ctx context.Context, threadID string) error {
	return m.next.Delete(ctx, threadID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// scrubState masks matches in every free-text field of the state. Structured
// fields (intent, agent, counters) cannot carry user-entered text.
func (m *piiMiddleware) scrubState(state *domain.ExecutionState) {
	if state == nil {
		return
	}

	state.Query = m.scrub(state.Query)
	state.RawResponse = m.scrub(state.RawResponse)
	state.FinalResponse = m.scrub(state.FinalResponse)
	state.FallbackReason = m.scrub(state.FallbackReason)

	for i, entry := range state.ErrorLog {
		state.ErrorLog[i] = m.scrub(entry)
	}
	for key, values := range state.IntentEntities {
		for i, v := range values {
			values[i] = m.scrub(v)
		}
		state.IntentEntities[key] = values
	}
	for i, s := range state.Sources {
		state.Sources[i].Excerpt = m.scrub(s.Excerpt)
	}
}

func (m *piiMiddleware) scrub(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, piiMask)
	}
	return text
}
