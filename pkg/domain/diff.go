package domain

import (
	"reflect"
)

// StateDiff represents the changes a turn made to a conversation.
// It is designed to be serialized to JSON for auditing and partial updates on clients.
type StateDiff struct {
	// ConversationID is always present to identify the target.
	ConversationID string `json:"conversation_id"`

	// Status changed?
	Status *ConversationStatus `json:"status,omitempty"`

	// Slots contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Slots map[string]any `json:"slots,omitempty"`

	// Stack is the full new stack, present only when it changed.
	// Stacks are small, so sending them whole keeps clients simple.
	Stack *Stack `json:"stack,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		ConversationID: newState.ConversationID,
	}

	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
	}

	diff.Slots = diffSlots(oldState, newState)

	if oldState == nil || !stacksEqual(oldState.Stack, newState.Stack) {
		stack := newState.Stack
		diff.Stack = &stack
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffSlots(old *State, new *State) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Slots {
			delta[k] = v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.Slots {
		oldVal, exists := old.Slots[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old.Slots {
		if _, exists := new.Slots[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func stacksEqual(a, b Stack) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].DialogID != b[i].DialogID || a[i].Cursor != b[i].Cursor {
			return false
		}
		if !reflect.DeepEqual(a[i].Options, b[i].Options) {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Status == nil &&
		len(d.Slots) == 0 &&
		d.Stack == nil
}
