package domain

import "time"

// ConversationStatus defines whether a conversation has a running flow.
type ConversationStatus string

const (
	StatusIdle   ConversationStatus = "idle"   // Stack is empty
	StatusActive ConversationStatus = "active" // At least one frame is pushed
)

// CursorNotStarted is the cursor of a frame whose dialog has not run any step yet.
const CursorNotStarted = -1

// Frame is the persisted record of one active dialog instance.
type Frame struct {
	DialogID string         `json:"dialog_id" bson:"dialog_id" mapstructure:"dialog_id"`
	Cursor   int            `json:"cursor" bson:"cursor" mapstructure:"cursor"`
	Options  map[string]any `json:"options,omitempty" bson:"options,omitempty" mapstructure:"options"`
}

// NewFrame creates a frame that has not started yet.
func NewFrame(dialogID string, options map[string]any) Frame {
	return Frame{
		DialogID: dialogID,
		Cursor:   CursorNotStarted,
		Options:  options,
	}
}

// Stack is an ordered sequence of frames. The last element is the active one.
type Stack []Frame

// Push appends a frame on top of the stack.
func (s *Stack) Push(f Frame) {
	*s = append(*s, f)
}

// Current returns a pointer to the active frame, or nil when the stack is empty.
// The pointer is only valid until the next Push or Pop.
func (s Stack) Current() *Frame {
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}

// Pop removes the active frame and returns it.
// The boolean is false when the stack was already empty.
func (s *Stack) Pop() (Frame, bool) {
	if len(*s) == 0 {
		return Frame{}, false
	}
	top := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return top, true
}

// Depth returns the number of pushed frames.
func (s Stack) Depth() int {
	return len(s)
}

// State represents the durable snapshot of a conversation.
type State struct {
	// ConversationID identifies the conversation (and the store key).
	ConversationID string `json:"conversation_id" bson:"conversation_id"`

	// Slots holds named values written by dialog steps (user space).
	Slots map[string]any `json:"slots" bson:"slots"`

	// Stack is the persisted continuation: active dialogs and their cursors.
	Stack Stack `json:"stack" bson:"stack"`

	// Status mirrors whether the stack is empty.
	Status ConversationStatus `json:"status" bson:"status"`

	// Turns counts committed turns.
	Turns int `json:"turns" bson:"turns"`

	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewState creates a clean, idle state for a conversation.
func NewState(conversationID string) *State {
	return &State{
		ConversationID: conversationID,
		Slots:          make(map[string]any),
		Stack:          Stack{},
		Status:         StatusIdle,
	}
}

// Active reports whether a flow is running.
func (s *State) Active() bool {
	return len(s.Stack) > 0
}

// Clone returns a copy that can be mutated without touching the source.
// Slot values are copied shallowly; frame options are copied per frame.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Slots = make(map[string]any, len(s.Slots))
	for k, v := range s.Slots {
		next.Slots[k] = v
	}
	next.Stack = make(Stack, len(s.Stack))
	for i, f := range s.Stack {
		opts := f.Options
		if opts != nil {
			opts = make(map[string]any, len(f.Options))
			for k, v := range f.Options {
				opts[k] = v
			}
		}
		next.Stack[i] = Frame{DialogID: f.DialogID, Cursor: f.Cursor, Options: opts}
	}
	return &next
}
