package dialog

import (
	"time"

	"github.com/hackeddesign/claire/pkg/domain"
)

// TurnContext carries one inbound message through the dispatcher.
// It is never persisted.
type TurnContext struct {
	ConversationID string
	Input          *string
	Now            time.Time

	state      *domain.State
	activities []domain.Activity
}

// NewTurnContext binds an inbound message to the loaded state.
// A nil input (a non-message activity) reads as the empty string.
func NewTurnContext(state *domain.State, input *string, now time.Time) *TurnContext {
	if state.Slots == nil {
		state.Slots = make(map[string]any)
	}
	return &TurnContext{
		ConversationID: state.ConversationID,
		Input:          input,
		Now:            now,
		state:          state,
	}
}

// Text returns the raw inbound text.
func (tc *TurnContext) Text() string {
	if tc.Input == nil {
		return ""
	}
	return *tc.Input
}

// State exposes the state being mutated by this turn.
func (tc *TurnContext) State() *domain.State {
	return tc.state
}

// Send queues an outbound activity.
func (tc *TurnContext) Send(a domain.Activity) {
	tc.activities = append(tc.activities, a)
}

// Activities returns the activities queued so far, in order.
func (tc *TurnContext) Activities() []domain.Activity {
	out := make([]domain.Activity, len(tc.activities))
	copy(out, tc.activities)
	return out
}

// StepContext is handed to every waterfall step.
type StepContext struct {
	// DialogID is the waterfall running the step.
	DialogID string
	// Index is the position of the step in the waterfall.
	Index int
	// Options are the options the waterfall was started with.
	Options map[string]any
	// Result is the value produced by the previous step or by a child dialog
	// that just ended (for example the validated answer of a prompt).
	Result any
	// Turn is the turn being processed.
	Turn *TurnContext
}

// Send queues a plain message.
func (sc *StepContext) Send(text string) {
	sc.Turn.Send(domain.Message(text))
}
