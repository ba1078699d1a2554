package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Verdict is the outcome of validating one raw answer.
// Value is what the prompt hands back to its parent when Accept is true.
// Message is shown to the user before the prompt is re-issued on rejection.
type Verdict struct {
	Accept  bool
	Value   any
	Message string
}

// Accept builds an accepting verdict carrying value.
func Accept(value any) Verdict {
	return Verdict{Accept: true, Value: value}
}

// Reject builds a rejecting verdict with an optional user-facing message.
func Reject(message string) Verdict {
	return Verdict{Accept: false, Message: message}
}

// Validator checks a raw text answer. It must be pure: no I/O, no state.
type Validator func(input string) Verdict

// AcceptTrimmed accepts any input and returns it with surrounding whitespace removed.
func AcceptTrimmed(input string) Verdict {
	return Accept(strings.TrimSpace(input))
}

// Registry manages the available validators.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]Validator
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]Validator),
	}
}

// Register adds a validator to the registry.
// If a validator with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = fn
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validators[name]
	return fn, ok
}

// Names lists the registered validators in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate looks up a validator by name and applies it to input.
// Returns an error if the validator is not found.
func (r *Registry) Validate(name string, input string) (Verdict, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return Verdict{}, fmt.Errorf("validator not found: %s", name)
	}
	return fn(input), nil
}
