package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/ports"
)

// Mask replaces answers hidden by the PII middleware.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks stored answers whose
// "questionID.placeholder" path matches one of the patterns. The in-memory
// session keeps the real value; only the stored copy is masked, so it suits
// audit or analytics stores rather than stores sessions are resumed from.
func NewPIIMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PII pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.FormState) error {
	masked := state.Snapshot()
	for qid, answers := range masked.Responses {
		for key, v := range answers {
			if m.matches(qid+"."+key) && !v.IsEmpty() {
				answers[key] = domain.Text(Mask)
			}
		}
	}
	return m.next.Save(ctx, sessionID, masked)
}

func (m *piiMiddleware) matches(path string) bool {
	for _, p := range m.patterns {
		if p.MatchString(path) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.FormState, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
