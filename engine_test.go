package claire_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hackeddesign/claire"
	"github.com/hackeddesign/claire/pkg/adapters/file"
	"github.com/hackeddesign/claire/pkg/adapters/memory"
	"github.com/hackeddesign/claire/pkg/dialog"
	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/flows/enquiry"
	"github.com/hackeddesign/claire/pkg/ports"
	"github.com/hackeddesign/claire/pkg/registry"
	"github.com/hackeddesign/claire/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) *string { return &s }

func newEngine(t *testing.T, store ports.StateStore, opts ...claire.Option) *claire.Engine {
	t.Helper()
	eng, err := claire.New(append([]claire.Option{claire.WithStore(store)}, opts...)...)
	require.NoError(t, err)
	return eng
}

// faultyStore fails Load or Save on demand.
type faultyStore struct {
	ports.StateStore
	loadErr error
	saveErr error
}

func (s *faultyStore) Load(ctx context.Context, id string) (*domain.State, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.StateStore.Load(ctx, id)
}

func (s *faultyStore) Save(ctx context.Context, id string, state *domain.State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.StateStore.Save(ctx, id, state)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := claire.New()
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = claire.New(claire.WithStore(memory.NewStore()), claire.WithStartDialog("ghost", nil))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEngine_EnquiryConversation(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, memory.NewStore())

	res, err := eng.Turn(ctx, "c1", text("hi"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.NamePromptText)}, res.Activities)
	assert.True(t, res.Active)
	assert.Equal(t, dialog.StatusWaiting, res.Status)

	res, err = eng.Turn(ctx, "c1", text("Al"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{
		domain.Message("Names needs to be at least `3` characters long."),
		domain.Prompt(enquiry.NamePromptText),
	}, res.Activities)

	res, err = eng.Turn(ctx, "c1", text("Alice"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.TopicPromptText)}, res.Activities)

	res, err = eng.Turn(ctx, "c1", text("Billing"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{
		domain.Message("Hi Alice, give me a moment while I look for information about Billing"),
	}, res.Activities)
	assert.False(t, res.Active)
	assert.Equal(t, dialog.StatusComplete, res.Status)
	assert.Nil(t, res.Value)

	state, err := eng.Inspect(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 4, state.Turns)
	assert.Equal(t, domain.StatusIdle, state.Status)
	assert.Empty(t, state.Stack)
}

func TestEngine_ResumesAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := newEngine(t, file.New(dir))
	_, err := first.Turn(ctx, "c1", text("hi"))
	require.NoError(t, err)
	_, err = first.Turn(ctx, "c1", text("Alice"))
	require.NoError(t, err)

	// A new engine over a new store handle on the same directory.
	second := newEngine(t, file.New(dir))
	res, err := second.Turn(ctx, "c1", text("Billing"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{
		domain.Message("Hi Alice, give me a moment while I look for information about Billing"),
	}, res.Activities)
}

func TestEngine_SaveFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := &faultyStore{StateStore: inner}

	var delivered []domain.Activity
	sender := ports.SenderFunc(func(_ context.Context, _ string, a domain.Activity) error {
		delivered = append(delivered, a)
		return nil
	})
	eng := newEngine(t, store, claire.WithSender(sender))

	_, err := eng.Turn(ctx, "c1", text("hi"))
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	before, err := inner.Load(ctx, "c1")
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	res, err := eng.Turn(ctx, "c1", text("Alice"))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Len(t, delivered, 1, "no activity leaves before commit")

	after, err := inner.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Retrying the same input once storage recovers gives the same outcome.
	store.saveErr = nil
	res, err = eng.Turn(ctx, "c1", text("Alice"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.TopicPromptText)}, res.Activities)
}

func TestEngine_LoadFailure(t *testing.T) {
	store := &faultyStore{StateStore: memory.NewStore(), loadErr: errors.New("connection refused")}
	eng := newEngine(t, store)

	_, err := eng.Turn(context.Background(), "c1", text("hi"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorContains(t, err, "connection refused")
}

func TestEngine_MalformedFrameIsNotCommitted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	state := domain.NewState("c1")
	state.Stack.Push(domain.Frame{DialogID: "retiredDialog", Cursor: 2})
	require.NoError(t, store.Save(ctx, "c1", state))

	eng := newEngine(t, store)
	_, err := eng.Turn(ctx, "c1", text("hi"))
	assert.ErrorIs(t, err, domain.ErrMalformedFrame)

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "retiredDialog", loaded.Stack[0].DialogID)
	assert.Equal(t, 0, loaded.Turns)

	// Reset recovers the conversation.
	res, err := eng.Reset(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, res.Active)
}

func TestEngine_RoutingChainsNextDialogue(t *testing.T) {
	say := func(msg string) dialog.Step {
		return func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
			sc.Send(msg)
			return dialog.End(msg), nil
		}
	}
	set := dialog.NewSet()
	require.NoError(t, set.AddWaterfall(dialog.NewWaterfall("greet", say("hello"))))
	require.NoError(t, set.AddWaterfall(dialog.NewWaterfall("survey", say("how did we do?"))))

	table, err := routing.New(
		[]routing.IntentConfiguration{{Intent: "greeting", Dialogue: "greet"}},
		[]routing.DialogueConfiguration{{ID: "greet", Next: "survey"}, {ID: "survey"}},
	)
	require.NoError(t, err)

	eng := newEngine(t, memory.NewStore(),
		claire.WithDialogs(set, registry.NewRegistry()),
		claire.WithRoutingTable(table),
		claire.WithStartDialog("greet", nil),
	)

	res, err := eng.Turn(context.Background(), "c1", text("hi"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{domain.Message("hello"), domain.Message("how did we do?")}, res.Activities)
	assert.Equal(t, "how did we do?", res.Value)
	assert.False(t, res.Active)

	res, err = eng.StartIntent(context.Background(), "c2", "greeting", nil)
	require.NoError(t, err)
	assert.Len(t, res.Activities, 2)

	_, err = eng.StartIntent(context.Background(), "c2", "weather", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownIntent)
}

func TestEngine_RoutingRequiresRegisteredDialogues(t *testing.T) {
	_, err := claire.New(
		claire.WithStore(memory.NewStore()),
		claire.WithRoutingTable(routing.Default("someOtherDialog")),
	)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEngine_StartIntentWithoutRoutes(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	_, err := eng.StartIntent(context.Background(), "c1", "enquiry", nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEngine_BeginWithOptions(t *testing.T) {
	eng := newEngine(t, memory.NewStore(), claire.WithRoutingTable(routing.Default(enquiry.DialogID)))

	res, err := eng.StartIntent(context.Background(), "c1", "enquiry", map[string]any{"name": "Carol"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.TopicPromptText)}, res.Activities)
}

func TestEngine_Reset(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, memory.NewStore())

	_, err := eng.Turn(ctx, "c1", text("hi"))
	require.NoError(t, err)
	_, err = eng.Turn(ctx, "c1", text("Alice"))
	require.NoError(t, err)

	res, err := eng.Reset(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Empty(t, res.Activities)

	// The profile survives; the next message restarts the flow at the topic.
	res, err = eng.Turn(ctx, "c1", text("hello"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Activity{domain.Prompt(enquiry.TopicPromptText)}, res.Activities)
}

func TestEngine_HooksAndDiff(t *testing.T) {
	var committed []*domain.TurnEvent
	var rejected int
	hooks := domain.LifecycleHooks{
		OnTurnCommitted:  func(_ context.Context, e *domain.TurnEvent) { committed = append(committed, e) },
		OnPromptRejected: func(_ context.Context, _ *domain.PromptEvent) { rejected++ },
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	eng := newEngine(t, memory.NewStore(),
		claire.WithLifecycleHooks(hooks),
		claire.WithClock(func() time.Time { return now }),
	)

	res, err := eng.Turn(context.Background(), "c1", text("hi"))
	require.NoError(t, err)
	require.NotNil(t, res.Diff)
	require.NotNil(t, res.Diff.Stack)
	assert.Len(t, *res.Diff.Stack, 2)
	assert.Equal(t, now, res.State.UpdatedAt)

	_, err = eng.Turn(context.Background(), "c1", text("x"))
	require.NoError(t, err)

	require.Len(t, committed, 2)
	assert.Equal(t, 1, committed[0].Activities)
	assert.Equal(t, "c1", committed[0].ConversationID)
	assert.Equal(t, 1, rejected)
}

func TestEngine_SerializesTurnsPerConversation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	eng := newEngine(t, store)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Turn(ctx, "c1", text("x"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, n, state.Turns, "no turn was lost to a concurrent overwrite")
}

func TestEngine_RequiresConversationID(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	_, err := eng.Turn(context.Background(), "", text("hi"))
	assert.ErrorIs(t, err, claire.ErrConversationIDRequired)
}

func TestEngine_NilInput(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, memory.NewStore())

	_, err := eng.Turn(ctx, "c1", nil)
	require.NoError(t, err)
	res, err := eng.Turn(ctx, "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Names needs to be at least `3` characters long.", res.Activities[0].Text)
}
