package enquiry_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/hackeddesign/claire/pkg/dialog"
	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/dsl"
	"github.com/hackeddesign/claire/pkg/flows/enquiry"
	"github.com/hackeddesign/claire/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nameRejection = "Names needs to be at least `3` characters long."

func newDispatcher(t *testing.T) *dialog.Dispatcher {
	t.Helper()
	flow, err := enquiry.New(enquiry.NewAccessor())
	require.NoError(t, err)

	b := dsl.New()
	reg := registry.NewRegistry()
	flow.Register(b, reg)

	set, err := b.Build()
	require.NoError(t, err)
	d, err := dialog.NewDispatcher(set, reg)
	require.NoError(t, err)
	return d
}

func say(t *testing.T, d *dialog.Dispatcher, state *domain.State, text string) []domain.Activity {
	t.Helper()
	tc := dialog.NewTurnContext(state, &text, time.Now())
	_, err := d.Turn(context.Background(), tc, enquiry.DialogID, nil)
	require.NoError(t, err)
	return tc.Activities()
}

func profile(t *testing.T, state *domain.State) enquiry.State {
	t.Helper()
	tc := dialog.NewTurnContext(state, nil, time.Now())
	st, err := enquiry.NewAccessor().Get(tc, nil)
	require.NoError(t, err)
	return st
}

// roundTrip simulates a process restart: the state goes through JSON as a
// store would keep it, and nothing else survives.
func roundTrip(t *testing.T, state *domain.State) *domain.State {
	t.Helper()
	data, err := json.Marshal(state)
	require.NoError(t, err)
	var out domain.State
	require.NoError(t, json.Unmarshal(data, &out))
	return &out
}

func TestEnquiry_Scenario(t *testing.T) {
	d := newDispatcher(t)
	state := domain.NewState("c1")

	// Scenario 1
	out := say(t, d, state, "hi")
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.NamePromptText)}, out)

	out = say(t, d, state, "Al")
	assert.Equal(t, []domain.Activity{
		domain.Message(nameRejection),
		domain.Prompt(enquiry.NamePromptText),
	}, out)
	assert.Empty(t, profile(t, state).Name)

	out = say(t, d, state, "Alice")
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.TopicPromptText)}, out)
	assert.Equal(t, "Alice", profile(t, state).Name)

	// Scenario 2
	out = say(t, d, state, "Billing")
	assert.Equal(t, []domain.Activity{
		domain.Message("Hi Alice, give me a moment while I look for information about Billing"),
	}, out)
	assert.Equal(t, enquiry.State{Name: "Alice", Topic: "Billing"}, profile(t, state))
	assert.Empty(t, state.Stack, "dialog ends and the stack empties")
}

func TestEnquiry_RestartSafety(t *testing.T) {
	// Uninterrupted run.
	d1 := newDispatcher(t)
	live := domain.NewState("c1")
	say(t, d1, live, "hi")
	want := say(t, d1, live, "Alice")

	// Same turns, with a fresh dispatcher and a serialized state in between.
	restarted := domain.NewState("c1")
	say(t, newDispatcher(t), restarted, "hi")
	restarted = roundTrip(t, restarted)
	require.Len(t, restarted.Stack, 2)
	assert.Equal(t, enquiry.NamePrompt, restarted.Stack[1].DialogID)

	got := say(t, newDispatcher(t), restarted, "Alice")
	assert.Equal(t, want, got)
	assert.Equal(t, live.Stack, restarted.Stack)
	assert.Equal(t, profile(t, live), profile(t, restarted))

	restarted = roundTrip(t, restarted)
	out := say(t, newDispatcher(t), restarted, "Billing")
	assert.Equal(t, []domain.Activity{
		domain.Message("Hi Alice, give me a moment while I look for information about Billing"),
	}, out)
}

func TestEnquiry_IdempotentInit(t *testing.T) {
	d := newDispatcher(t)

	// Existing profile is untouched by Init, whatever the options say.
	state := domain.NewState("c1")
	state.Slots[enquiry.StateSlot] = enquiry.State{Name: "Bob"}
	tc := dialog.NewTurnContext(state, nil, time.Now())
	_, err := d.Begin(context.Background(), tc, enquiry.DialogID, map[string]any{"name": "Mallory", "topic": "x"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", profile(t, state).Name)

	// Without a profile, the options seed it.
	seeded := domain.NewState("c2")
	tc = dialog.NewTurnContext(seeded, nil, time.Now())
	_, err = d.Begin(context.Background(), tc, enquiry.DialogID, map[string]any{"name": " Carol ", "topic": "Refunds"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{
		domain.Message("Hi Carol, give me a moment while I look for information about Refunds"),
	}, tc.Activities())
	assert.False(t, seeded.Active())

	// No options: an empty profile.
	empty := domain.NewState("c3")
	tc = dialog.NewTurnContext(empty, nil, time.Now())
	_, err = d.Begin(context.Background(), tc, enquiry.DialogID, nil)
	require.NoError(t, err)
	assert.Equal(t, enquiry.State{}, profile(t, empty))
}

func TestEnquiry_SkipIfSet(t *testing.T) {
	d := newDispatcher(t)
	state := domain.NewState("c1")
	state.Slots[enquiry.StateSlot] = map[string]any{"name": "Alice", "topic": ""}

	for i := 0; i < 3; i++ {
		out := say(t, d, state, "hello again")
		for _, a := range out {
			assert.NotEqual(t, enquiry.NamePromptText, a.Text, "name is never asked once set")
		}
		// Reset the stack so the flow re-enters from the top on the next turn.
		state.Stack = domain.Stack{}
	}

	out := say(t, d, state, "hi")
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.TopicPromptText)}, out)
}

func TestEnquiry_BlankTopic(t *testing.T) {
	d := newDispatcher(t)
	state := domain.NewState("c1")

	say(t, d, state, "hi")
	say(t, d, state, "Alice")

	out := say(t, d, state, "   ")
	assert.Equal(t, []domain.Activity{
		domain.Message("Hi Alice, give me a moment while I look for information about "),
	}, out)
	assert.Equal(t, enquiry.State{Name: "Alice"}, profile(t, state))
	assert.Empty(t, state.Stack)

	// The topic stays unset, so the next conversation asks for it again.
	out = say(t, d, roundTrip(t, state), "hello")
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.TopicPromptText)}, out)
}

func TestEnquiry_RejectionNeverMutatesName(t *testing.T) {
	d := newDispatcher(t)
	state := domain.NewState("c1")
	say(t, d, state, "hi")

	for _, input := range []string{"", " ", "A", "Al", "  Al  ", "\t\n"} {
		out := say(t, d, state, input)
		require.Len(t, out, 2)
		assert.Equal(t, nameRejection, out[0].Text)
		assert.Empty(t, profile(t, state).Name)
		assert.Equal(t, enquiry.NamePrompt, state.Stack.Current().DialogID)
	}
}

func TestValidateName_Monotonicity(t *testing.T) {
	inputs := []string{
		"", " ", "ab", " ab ", "abc", "  abc  ", "Alice", "\tBo\n", "Zoë", "李小龙", "ab ", "a b",
	}
	for _, s := range inputs {
		v := enquiry.ValidateName(s)
		trimmed := strings.TrimSpace(s)
		assert.Equal(t, utf8.RuneCountInString(trimmed) >= 3, v.Accept, "input %q", s)
		if v.Accept {
			assert.Equal(t, trimmed, v.Value)
		} else {
			assert.Equal(t, nameRejection, v.Message)
		}
	}
}

func TestValidateTopic_AcceptsAll(t *testing.T) {
	for _, s := range []string{"", "x", "  Billing  "} {
		v := enquiry.ValidateTopic(s)
		assert.True(t, v.Accept)
		assert.Equal(t, strings.TrimSpace(s), v.Value)
	}
}

func TestNew_RequiresAccessor(t *testing.T) {
	_, err := enquiry.New(nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
