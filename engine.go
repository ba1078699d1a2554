package claire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hackeddesign/claire/internal/logging"
	"github.com/hackeddesign/claire/pkg/dialog"
	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/dsl"
	"github.com/hackeddesign/claire/pkg/flows/enquiry"
	"github.com/hackeddesign/claire/pkg/ports"
	"github.com/hackeddesign/claire/pkg/registry"
	"github.com/hackeddesign/claire/pkg/routing"
	"github.com/hackeddesign/claire/pkg/session"
)

// ErrConversationIDRequired is returned when a turn names no conversation.
var ErrConversationIDRequired = errors.New("conversation id is required")

// Engine is the high-level entry point for claire.
// It loads a conversation, runs one turn through the dialog dispatcher and
// commits the result before handing activities back.
type Engine struct {
	store      ports.StateStore
	manager    *session.Manager
	dispatcher *dialog.Dispatcher

	dialogs    *dialog.Set
	validators *registry.Registry
	routes     *routing.Table

	startDialog  string
	startOptions map[string]any
	startSet     bool

	locker  ports.DistributedLocker
	lockTTL time.Duration
	sender  ports.Sender
	hooks   domain.LifecycleHooks
	clock   func() time.Time
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the durable state store. Required.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithDialogs replaces the built-in enquiry dialogs.
func WithDialogs(set *dialog.Set, validators *registry.Registry) Option {
	return func(e *Engine) {
		e.dialogs = set
		e.validators = validators
	}
}

// WithRoutingTable enables intent resolution and next chaining.
func WithRoutingTable(table *routing.Table) Option {
	return func(e *Engine) {
		e.routes = table
	}
}

// WithStartDialog sets the dialog begun when a message arrives on an idle
// conversation. An empty id leaves idle conversations silent.
func WithStartDialog(dialogID string, options map[string]any) Option {
	return func(e *Engine) {
		e.startDialog = dialogID
		e.startOptions = options
		e.startSet = true
	}
}

// WithLocker serializes turns across replicas.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// WithSender delivers activities after every committed turn.
func WithSender(sender ports.Sender) Option {
	return func(e *Engine) {
		e.sender = sender
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New initializes an Engine. Without WithDialogs it runs the enquiry flow.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		clock:  time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		return nil, &domain.ConfigurationError{Component: "engine", Reason: "state store is required"}
	}

	if e.dialogs == nil {
		set, validators, err := defaultDialogs(e.logger)
		if err != nil {
			return nil, err
		}
		e.dialogs, e.validators = set, validators
		if !e.startSet {
			e.startDialog = enquiry.DialogID
		}
	}

	dispatcher, err := dialog.NewDispatcher(e.dialogs, e.validators,
		dialog.WithLogger(e.logger),
		dialog.WithLifecycleHooks(e.hooks),
	)
	if err != nil {
		return nil, err
	}
	e.dispatcher = dispatcher

	if e.startDialog != "" && !e.dialogs.Has(e.startDialog) {
		return nil, &domain.ConfigurationError{
			Component: "engine",
			Reason:    fmt.Sprintf("start dialog '%s' is not registered", e.startDialog),
		}
	}
	if e.routes != nil {
		if err := e.routes.CheckRegistered(e.dialogs.Has); err != nil {
			return nil, err
		}
	}

	managerOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(e.locker), session.WithLockTTL(e.lockTTL))
	}
	e.manager = session.NewManager(e.store, managerOpts...)

	return e, nil
}

func defaultDialogs(logger *slog.Logger) (*dialog.Set, *registry.Registry, error) {
	flow, err := enquiry.New(enquiry.NewAccessor(), enquiry.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	b := dsl.New()
	validators := registry.NewRegistry()
	flow.Register(b, validators)

	set, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return set, validators, nil
}

// TurnResult is what a committed turn hands back to the host.
type TurnResult struct {
	ConversationID string            `json:"conversation_id"`
	Activities     []domain.Activity `json:"activities"`
	Active         bool              `json:"active"`
	Status         dialog.TurnStatus `json:"status"`
	Value          any               `json:"value,omitempty"`
	Diff           *domain.StateDiff `json:"diff,omitempty"`
	State          *domain.State     `json:"-"`
}

// Turn processes one inbound message. A nil input is treated as empty text.
// Activities are returned only after the new state has been saved; if the
// save fails the turn returns an error and no activities.
func (e *Engine) Turn(ctx context.Context, conversationID string, input *string) (*TurnResult, error) {
	return e.run(ctx, conversationID, input, func(ctx context.Context, tc *dialog.TurnContext) (*dialog.Result, error) {
		return e.dispatcher.Turn(ctx, tc, e.startDialog, e.startOptions)
	})
}

// Begin cancels whatever runs in the conversation and begins dialogID.
func (e *Engine) Begin(ctx context.Context, conversationID, dialogID string, options map[string]any) (*TurnResult, error) {
	return e.run(ctx, conversationID, nil, func(ctx context.Context, tc *dialog.TurnContext) (*dialog.Result, error) {
		e.dispatcher.CancelAll(ctx, tc)
		return e.dispatcher.Begin(ctx, tc, dialogID, options)
	})
}

// StartIntent resolves intent through the routing table and begins its dialogue.
func (e *Engine) StartIntent(ctx context.Context, conversationID, intent string, options map[string]any) (*TurnResult, error) {
	if e.routes == nil {
		return nil, &domain.ConfigurationError{Component: "engine", Reason: "no routing table configured"}
	}
	target, err := e.routes.Resolve(intent)
	if err != nil {
		return nil, err
	}
	return e.Begin(ctx, conversationID, target.ID, options)
}

// Reset cancels every active dialog. Slots are kept.
func (e *Engine) Reset(ctx context.Context, conversationID string) (*TurnResult, error) {
	return e.run(ctx, conversationID, nil, func(ctx context.Context, tc *dialog.TurnContext) (*dialog.Result, error) {
		e.dispatcher.CancelAll(ctx, tc)
		return &dialog.Result{Status: dialog.StatusEmpty}, nil
	})
}

// Inspect returns the stored state of a conversation.
func (e *Engine) Inspect(ctx context.Context, conversationID string) (*domain.State, error) {
	return e.manager.Load(ctx, conversationID)
}

// Delete removes a conversation from the store.
func (e *Engine) Delete(ctx context.Context, conversationID string) error {
	return e.manager.Delete(ctx, conversationID)
}

// List returns the stored conversation ids.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.manager.List(ctx)
}

// Dialogs returns the registered dialog set.
func (e *Engine) Dialogs() *dialog.Set {
	return e.dialogs
}

// Routes returns the routing table, or nil.
func (e *Engine) Routes() *routing.Table {
	return e.routes
}

type turnFunc func(ctx context.Context, tc *dialog.TurnContext) (*dialog.Result, error)

func (e *Engine) run(ctx context.Context, conversationID string, input *string, fn turnFunc) (*TurnResult, error) {
	if conversationID == "" {
		return nil, ErrConversationIDRequired
	}

	var out *TurnResult
	err := e.manager.WithLock(ctx, conversationID, func(ctx context.Context) error {
		store := e.manager.Store()

		state, err := store.Load(ctx, conversationID)
		if err != nil {
			if !errors.Is(err, domain.ErrConversationNotFound) {
				return &domain.StorageError{Op: "load", Err: err}
			}
			state = domain.NewState(conversationID)
		}
		if state.Slots == nil {
			state.Slots = make(map[string]any)
		}
		before := state.Clone()

		now := e.clock()
		tc := dialog.NewTurnContext(state, input, now)

		res, err := fn(ctx, tc)
		if err != nil {
			return err
		}
		if res, err = e.chain(ctx, tc, res); err != nil {
			return err
		}

		state.Status = domain.StatusIdle
		if state.Active() {
			state.Status = domain.StatusActive
		}
		state.Turns++
		state.UpdatedAt = now

		if err := store.Save(ctx, conversationID, state); err != nil {
			return &domain.StorageError{Op: "save", Err: err}
		}

		diff := domain.Diff(before, state)
		activities := tc.Activities()
		e.logger.Debug("Turn committed",
			"conversation_id", conversationID,
			"turns", state.Turns,
			"active", state.Active(),
			"activities", len(activities),
		)
		if e.hooks.OnTurnCommitted != nil {
			e.hooks.OnTurnCommitted(ctx, &domain.TurnEvent{
				EventBase: domain.EventBase{
					Timestamp:      now,
					Type:           domain.EventTurnCommitted,
					ConversationID: conversationID,
				},
				Activities: len(activities),
				Diff:       diff,
			})
		}

		out = &TurnResult{
			ConversationID: conversationID,
			Activities:     activities,
			Active:         state.Active(),
			Status:         res.Status,
			Value:          res.Value,
			Diff:           diff,
			State:          state,
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("Turn aborted", "conversation_id", conversationID, "err", err)
		return nil, err
	}

	e.deliver(ctx, out)
	return out, nil
}

// chain begins the routing table's next dialogue each time a root dialog
// completes, within the same turn.
func (e *Engine) chain(ctx context.Context, tc *dialog.TurnContext, res *dialog.Result) (*dialog.Result, error) {
	if e.routes == nil {
		return res, nil
	}
	for hops := 0; res.Status == dialog.StatusComplete; hops++ {
		next := e.routes.Next(res.DialogID)
		if next == "" {
			return res, nil
		}
		if hops >= dialog.MaxDepth {
			return nil, fmt.Errorf("dialog chain from '%s' exceeds %d hops", res.DialogID, dialog.MaxDepth)
		}
		e.logger.Debug("Dialog chained", "conversation_id", tc.ConversationID, "from", res.DialogID, "dialog_id", next)

		var err error
		res, err = e.dispatcher.Begin(ctx, tc, next, nil)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (e *Engine) deliver(ctx context.Context, res *TurnResult) {
	if e.sender == nil {
		return
	}
	for _, a := range res.Activities {
		if err := e.sender.Send(ctx, res.ConversationID, a); err != nil {
			e.logger.Warn("Failed to deliver activity", "conversation_id", res.ConversationID, "err", err)
		}
	}
}
