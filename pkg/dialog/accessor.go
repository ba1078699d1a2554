package dialog

import (
	"fmt"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Accessor reads and writes one typed slot of the conversation state.
type Accessor[T any] struct {
	key string
}

// NewAccessor binds an accessor to a slot key.
func NewAccessor[T any](key string) *Accessor[T] {
	return &Accessor[T]{key: key}
}

// Key returns the slot key.
func (a *Accessor[T]) Key() string {
	return a.key
}

// Has reports whether the slot holds a value.
func (a *Accessor[T]) Has(tc *TurnContext) bool {
	_, ok := tc.state.Slots[a.key]
	return ok
}

// Get returns the slot value. When the slot is empty, factory is called once and
// its result is stored; a nil factory yields the zero value without storing it.
//
// Values that went through a store come back as generic maps; they are decoded
// into T and cached back into the slot.
func (a *Accessor[T]) Get(tc *TurnContext, factory func() T) (T, error) {
	var zero T

	raw, ok := tc.state.Slots[a.key]
	if !ok || raw == nil {
		if factory == nil {
			return zero, nil
		}
		v := factory()
		tc.state.Slots[a.key] = v
		return v, nil
	}

	switch v := raw.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}

	var out T
	if err := Decode(raw, &out); err != nil {
		return zero, fmt.Errorf("slot '%s': %w: %v", a.key, domain.ErrMalformedState, err)
	}
	tc.state.Slots[a.key] = out
	return out, nil
}

// Set overwrites the slot.
func (a *Accessor[T]) Set(tc *TurnContext, value T) error {
	if tc == nil || tc.state == nil {
		return fmt.Errorf("slot '%s': no state bound to turn", a.key)
	}
	tc.state.Slots[a.key] = value
	return nil
}

// Delete clears the slot.
func (a *Accessor[T]) Delete(tc *TurnContext) {
	delete(tc.state.Slots, a.key)
}

// Decode copies a generic value (typically map[string]any) into out, matching
// fields by their mapstructure tags.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
