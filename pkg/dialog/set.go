package dialog

import (
	"fmt"
	"sort"
)

// Set is the registry of dialogs a dispatcher can run, keyed by dialog id.
type Set struct {
	waterfalls map[string]*Waterfall
	prompts    map[string]*TextPrompt
}

// NewSet creates an empty dialog set.
func NewSet() *Set {
	return &Set{
		waterfalls: make(map[string]*Waterfall),
		prompts:    make(map[string]*TextPrompt),
	}
}

// AddWaterfall registers a waterfall. Ids are unique across the set.
func (s *Set) AddWaterfall(w *Waterfall) error {
	if w == nil || w.id == "" {
		return fmt.Errorf("waterfall requires an id")
	}
	if len(w.steps) == 0 {
		return fmt.Errorf("waterfall '%s' has no steps", w.id)
	}
	if s.Has(w.id) {
		return fmt.Errorf("dialog '%s' is already registered", w.id)
	}
	s.waterfalls[w.id] = w
	return nil
}

// AddPrompt registers a text prompt. Ids are unique across the set.
func (s *Set) AddPrompt(p *TextPrompt) error {
	if p == nil || p.id == "" {
		return fmt.Errorf("prompt requires an id")
	}
	if p.validator == "" {
		return fmt.Errorf("prompt '%s' requires a validator", p.id)
	}
	if s.Has(p.id) {
		return fmt.Errorf("dialog '%s' is already registered", p.id)
	}
	s.prompts[p.id] = p
	return nil
}

// Has reports whether a dialog with the given id is registered.
func (s *Set) Has(id string) bool {
	if _, ok := s.waterfalls[id]; ok {
		return true
	}
	_, ok := s.prompts[id]
	return ok
}

// IDs lists all registered dialog ids in lexical order.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.waterfalls)+len(s.prompts))
	for id := range s.waterfalls {
		ids = append(ids, id)
	}
	for id := range s.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Prompts returns the registered prompts.
func (s *Set) Prompts() []*TextPrompt {
	out := make([]*TextPrompt, 0, len(s.prompts))
	for _, p := range s.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
