package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a read-side middleware that masks slot values whose
// keys match any of the patterns, at any depth. Saves pass through untouched,
// so wrap only the stores used for inspection (CLI, HTTP GET), never the one a
// dialog engine resumes from.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, conversationID string, state *domain.State) error {
	return m.next.Save(ctx, conversationID, state)
}

func (m *piiMiddleware) Load(ctx context.Context, conversationID string) (*domain.State, error) {
	state, err := m.next.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return Redact(state, m.patterns)
}

func (m *piiMiddleware) Delete(ctx context.Context, conversationID string) error {
	return m.next.Delete(ctx, conversationID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Redact returns a copy of state with matching slot keys masked.
// Typed slot values are converted to their JSON shape first so that struct
// fields are matched by their json names.
func Redact(state *domain.State, patterns []*regexp.Regexp) (*domain.State, error) {
	out := state.Clone()
	for k, v := range out.Slots {
		generic, err := toGeneric(v)
		if err != nil {
			return nil, fmt.Errorf("slot '%s': %w", k, err)
		}
		out.Slots[k] = generic
	}
	maskMap(out.Slots, patterns)
	return out, nil
}

// Helpers

func toGeneric(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64, int, map[string]any:
		if m, ok := v.(map[string]any); ok {
			return deepCopyMap(m), nil
		}
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
