package dialog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/registry"
)

// MaxDepth bounds the stack so a dialog that keeps beginning itself fails the
// turn instead of growing without limit.
const MaxDepth = 64

// TurnStatus summarises where the stack stands after a turn.
type TurnStatus string

const (
	// StatusWaiting means a frame is suspended on user input.
	StatusWaiting TurnStatus = "waiting"
	// StatusComplete means the root dialog ended during this turn.
	StatusComplete TurnStatus = "complete"
	// StatusEmpty means there was nothing to run.
	StatusEmpty TurnStatus = "empty"
)

// Result is the outcome of a dispatched turn.
type Result struct {
	Status TurnStatus
	// DialogID is the root dialog that ended, when Status is StatusComplete.
	DialogID string
	// Value is the root dialog's result, when Status is StatusComplete.
	Value any
}

// Dispatcher walks the persisted dialog stack. It holds no per-conversation
// state and is safe for concurrent use across conversations.
type Dispatcher struct {
	dialogs    *Set
	validators *registry.Registry
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// NewDispatcher validates the dialog set against the validator registry.
func NewDispatcher(dialogs *Set, validators *registry.Registry, opts ...Option) (*Dispatcher, error) {
	if dialogs == nil {
		return nil, &domain.ConfigurationError{Component: "dispatcher", Reason: "dialog set is required"}
	}
	if validators == nil {
		return nil, &domain.ConfigurationError{Component: "dispatcher", Reason: "validator registry is required"}
	}
	for _, p := range dialogs.Prompts() {
		if _, ok := validators.Lookup(p.validator); !ok {
			return nil, &domain.ConfigurationError{
				Component: fmt.Sprintf("prompt '%s'", p.id),
				Reason:    fmt.Sprintf("validator '%s' is not registered", p.validator),
			}
		}
	}

	d := &Dispatcher{
		dialogs:    dialogs,
		validators: validators,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dialogs returns the dialog set the dispatcher runs.
func (d *Dispatcher) Dialogs() *Set {
	return d.dialogs
}

// Turn processes one inbound message. With an empty stack it begins root (if
// set); otherwise the input goes to the active frame.
func (d *Dispatcher) Turn(ctx context.Context, tc *TurnContext, root string, options map[string]any) (*Result, error) {
	if tc.state.Active() {
		return d.Continue(ctx, tc)
	}
	if root == "" {
		return &Result{Status: StatusEmpty}, nil
	}
	return d.Begin(ctx, tc, root, options)
}

// Begin pushes dialogID on top of the stack and runs it until it suspends or ends.
// With an empty stack the dialog becomes the root.
func (d *Dispatcher) Begin(ctx context.Context, tc *TurnContext, dialogID string, options map[string]any) (*Result, error) {
	if !d.dialogs.Has(dialogID) {
		return nil, &domain.ConfigurationError{
			Component: fmt.Sprintf("dialog '%s'", dialogID),
			Reason:    "not registered",
		}
	}
	if tc.state.Stack.Depth() >= MaxDepth {
		return nil, fmt.Errorf("dialog '%s': stack depth limit %d reached", dialogID, MaxDepth)
	}

	tc.state.Stack.Push(domain.NewFrame(dialogID, options))
	depth := tc.state.Stack.Depth()

	d.logger.Debug("Dialog begin", "conversation_id", tc.ConversationID, "dialog_id", dialogID, "depth", depth)
	if d.hooks.OnDialogBegin != nil {
		d.hooks.OnDialogBegin(ctx, &domain.DialogEvent{
			EventBase: d.event(tc, domain.EventDialogBegin),
			DialogID:  dialogID,
			Depth:     depth,
		})
	}

	if p, ok := d.dialogs.prompts[dialogID]; ok {
		frame := tc.state.Stack.Current()
		frame.Cursor = 0
		if text := promptText(frame.Options, optionPrompt); text != "" {
			tc.Send(domain.Prompt(text))
		}
		d.logger.Debug("Prompt issued", "conversation_id", tc.ConversationID, "dialog_id", p.id)
		return &Result{Status: StatusWaiting}, nil
	}

	return d.runWaterfall(ctx, tc, d.dialogs.waterfalls[dialogID], nil)
}

// Continue routes the turn's input to the active frame.
func (d *Dispatcher) Continue(ctx context.Context, tc *TurnContext) (*Result, error) {
	frame := tc.state.Stack.Current()
	if frame == nil {
		return &Result{Status: StatusEmpty}, nil
	}

	if p, ok := d.dialogs.prompts[frame.DialogID]; ok {
		if frame.Cursor != 0 && frame.Cursor != domain.CursorNotStarted {
			return nil, &domain.MalformedFrameError{DialogID: frame.DialogID, Cursor: frame.Cursor, Reason: "cursor out of range for prompt"}
		}
		return d.continuePrompt(ctx, tc, p)
	}

	w, err := d.waterfallFor(frame)
	if err != nil {
		return nil, err
	}
	// A waterfall on top of the stack takes the raw text as its next step's input.
	return d.runWaterfall(ctx, tc, w, tc.Text())
}

// CancelAll pops every frame. Slots are left untouched.
func (d *Dispatcher) CancelAll(ctx context.Context, tc *TurnContext) {
	for tc.state.Stack.Depth() > 0 {
		frame, _ := tc.state.Stack.Pop()
		d.logger.Debug("Dialog cancelled", "conversation_id", tc.ConversationID, "dialog_id", frame.DialogID)
		if d.hooks.OnDialogEnd != nil {
			d.hooks.OnDialogEnd(ctx, &domain.DialogEvent{
				EventBase: d.event(tc, domain.EventDialogEnd),
				DialogID:  frame.DialogID,
				Depth:     tc.state.Stack.Depth(),
			})
		}
	}
}

func (d *Dispatcher) continuePrompt(ctx context.Context, tc *TurnContext, p *TextPrompt) (*Result, error) {
	frame := tc.state.Stack.Current()
	frame.Cursor = 0

	verdict, err := d.validators.Validate(p.validator, tc.Text())
	if err != nil {
		return nil, &domain.ConfigurationError{Component: fmt.Sprintf("prompt '%s'", p.id), Reason: err.Error()}
	}

	if !verdict.Accept {
		if verdict.Message != "" {
			tc.Send(domain.Message(verdict.Message))
		}
		if text := retryText(frame.Options); text != "" {
			tc.Send(domain.Prompt(text))
		}
		d.logger.Debug("Prompt rejected", "conversation_id", tc.ConversationID, "dialog_id", p.id)
		if d.hooks.OnPromptRejected != nil {
			d.hooks.OnPromptRejected(ctx, &domain.PromptEvent{
				EventBase: d.event(tc, domain.EventPromptRejected),
				PromptID:  p.id,
				Message:   verdict.Message,
			})
		}
		return &Result{Status: StatusWaiting}, nil
	}

	return d.end(ctx, tc, verdict.Value)
}

// runWaterfall executes steps of the waterfall on top of the stack, starting
// after its cursor, until one suspends or ends the dialog.
func (d *Dispatcher) runWaterfall(ctx context.Context, tc *TurnContext, w *Waterfall, prior any) (*Result, error) {
	for {
		frame := tc.state.Stack.Current()
		next := frame.Cursor + 1
		if next >= len(w.steps) {
			// Running off the end finishes the dialog with the last result.
			return d.end(ctx, tc, prior)
		}
		frame.Cursor = next

		d.logger.Debug("Step", "conversation_id", tc.ConversationID, "dialog_id", w.id, "cursor", next)
		res, err := w.steps[next](ctx, &StepContext{
			DialogID: w.id,
			Index:    next,
			Options:  frame.Options,
			Result:   prior,
			Turn:     tc,
		})
		if err != nil {
			return nil, fmt.Errorf("dialog '%s' step %d: %w", w.id, next, err)
		}

		switch res.kind {
		case stepNext:
			prior = res.value
		case stepBegin:
			return d.Begin(ctx, tc, res.target, res.options)
		case stepEnd:
			return d.end(ctx, tc, res.value)
		}
	}
}

// end pops the active frame and resumes its parent with value.
func (d *Dispatcher) end(ctx context.Context, tc *TurnContext, value any) (*Result, error) {
	frame, _ := tc.state.Stack.Pop()
	depth := tc.state.Stack.Depth()

	d.logger.Debug("Dialog end", "conversation_id", tc.ConversationID, "dialog_id", frame.DialogID, "depth", depth)
	if d.hooks.OnDialogEnd != nil {
		d.hooks.OnDialogEnd(ctx, &domain.DialogEvent{
			EventBase: d.event(tc, domain.EventDialogEnd),
			DialogID:  frame.DialogID,
			Depth:     depth,
			Result:    value,
		})
	}

	parent := tc.state.Stack.Current()
	if parent == nil {
		return &Result{Status: StatusComplete, DialogID: frame.DialogID, Value: value}, nil
	}

	w, err := d.waterfallFor(parent)
	if err != nil {
		return nil, err
	}
	return d.runWaterfall(ctx, tc, w, value)
}

// waterfallFor resolves a frame that must belong to a waterfall.
func (d *Dispatcher) waterfallFor(frame *domain.Frame) (*Waterfall, error) {
	w, ok := d.dialogs.waterfalls[frame.DialogID]
	if !ok {
		reason := "dialog is not registered"
		if _, isPrompt := d.dialogs.prompts[frame.DialogID]; isPrompt {
			reason = "prompt cannot own a child dialog"
		}
		return nil, &domain.MalformedFrameError{DialogID: frame.DialogID, Cursor: frame.Cursor, Reason: reason}
	}
	if frame.Cursor < domain.CursorNotStarted || frame.Cursor >= len(w.steps) {
		return nil, &domain.MalformedFrameError{DialogID: frame.DialogID, Cursor: frame.Cursor, Reason: "cursor out of range"}
	}
	return w, nil
}

func (d *Dispatcher) event(tc *TurnContext, t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:      tc.Now,
		Type:           t,
		ConversationID: tc.ConversationID,
	}
}
