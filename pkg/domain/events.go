package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDialogBegin    EventType = "dialog_begin"
	EventDialogEnd      EventType = "dialog_end"
	EventPromptRejected EventType = "prompt_rejected"
	EventTurnCommitted  EventType = "turn_committed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp      time.Time `json:"timestamp"`
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
}

// DialogEvent represents a dialog being pushed onto or popped off the stack.
type DialogEvent struct {
	EventBase
	DialogID string `json:"dialog_id"`
	Depth    int    `json:"depth"`
	Result   any    `json:"result,omitempty"`
}

// PromptEvent represents a rejected prompt answer.
type PromptEvent struct {
	EventBase
	PromptID string `json:"prompt_id"`
	Message  string `json:"message,omitempty"`
}

// TurnEvent is emitted after a turn's state has been persisted.
type TurnEvent struct {
	EventBase
	Activities int        `json:"activities"`
	Diff       *StateDiff `json:"diff,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnDialogBegin    func(context.Context, *DialogEvent)
	OnDialogEnd      func(context.Context, *DialogEvent)
	OnPromptRejected func(context.Context, *PromptEvent)
	OnTurnCommitted  func(context.Context, *TurnEvent)
}

// Merge returns hooks that call h first and then other, for every callback.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDialogBegin:    chain(h.OnDialogBegin, other.OnDialogBegin),
		OnDialogEnd:      chain(h.OnDialogEnd, other.OnDialogEnd),
		OnPromptRejected: chain(h.OnPromptRejected, other.OnPromptRejected),
		OnTurnCommitted:  chain(h.OnTurnCommitted, other.OnTurnCommitted),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
