package enquiry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hackeddesign/claire/pkg/dialog"
	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/dsl"
	"github.com/hackeddesign/claire/pkg/registry"
)

const (
	// DialogID is the waterfall id.
	DialogID = "enquiryDialog"
	// NamePrompt and TopicPrompt are the child prompt ids.
	NamePrompt  = "namePrompt"
	TopicPrompt = "topicPrompt"

	// StateSlot is the slot holding State.
	StateSlot = "enquiryState"

	// NameValidator and TopicValidator are the registered validator names.
	NameValidator  = "enquiry.name"
	TopicValidator = "enquiry.topic"

	NameLengthMinValue = 3

	NamePromptText  = "Firstly, can I ask who I'm talking to?"
	TopicPromptText = "What topic can I help you with?"
)

// State is the profile collected by the flow.
// Each field is either empty (unset) or a trimmed non-empty string.
type State struct {
	Name  string `json:"name" bson:"name" mapstructure:"name"`
	Topic string `json:"topic" bson:"topic" mapstructure:"topic"`
}

// NewAccessor returns the accessor bound to StateSlot.
func NewAccessor() *dialog.Accessor[State] {
	return dialog.NewAccessor[State](StateSlot)
}

// Flow holds the enquiry steps.
type Flow struct {
	state  *dialog.Accessor[State]
	logger *slog.Logger
}

// Option configures the flow.
type Option func(*Flow)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// New creates the flow over the given state accessor.
func New(state *dialog.Accessor[State], opts ...Option) (*Flow, error) {
	if state == nil {
		return nil, &domain.ConfigurationError{Component: "enquiry", Reason: "state accessor is required"}
	}
	f := &Flow{
		state:  state,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Register declares the waterfall and its prompts on b, and the validators on validators.
func (f *Flow) Register(b *dsl.Builder, validators *registry.Registry) {
	b.Waterfall(DialogID).
		Step(f.initialize).
		Step(f.promptForName).
		Step(f.saveName).
		Step(f.promptForTopic).
		Step(f.saveTopic).
		Step(f.respond)

	b.Prompt(NamePrompt, NameValidator).
		Prompt(TopicPrompt, TopicValidator)

	validators.Register(NameValidator, ValidateName)
	validators.Register(TopicValidator, ValidateTopic)
}

// ValidateName accepts names of at least NameLengthMinValue characters after trimming.
func ValidateName(input string) registry.Verdict {
	value := strings.TrimSpace(input)
	if utf8.RuneCountInString(value) >= NameLengthMinValue {
		return registry.Accept(value)
	}
	return registry.Reject(fmt.Sprintf("Names needs to be at least `%d` characters long.", NameLengthMinValue))
}

// ValidateTopic accepts any topic.
func ValidateTopic(input string) registry.Verdict {
	return registry.AcceptTrimmed(input)
}

// initialize seeds the slot from the dialog options, or with an empty profile,
// unless a profile already exists.
func (f *Flow) initialize(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	if f.state.Has(sc.Turn) {
		return dialog.Next(), nil
	}

	var seed State
	if len(sc.Options) > 0 {
		if err := dialog.Decode(sc.Options, &seed); err != nil {
			return dialog.StepResult{}, fmt.Errorf("decoding options: %w", err)
		}
		seed.Name = strings.TrimSpace(seed.Name)
		seed.Topic = strings.TrimSpace(seed.Topic)
	}

	f.logger.Debug("Enquiry state initialized", "conversation_id", sc.Turn.ConversationID, "seeded", seed != State{})
	if err := f.state.Set(sc.Turn, seed); err != nil {
		return dialog.StepResult{}, err
	}
	return dialog.Next(), nil
}

func (f *Flow) promptForName(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	st, err := f.state.Get(sc.Turn, nil)
	if err != nil {
		return dialog.StepResult{}, err
	}
	if strings.TrimSpace(st.Name) == "" {
		return dialog.Prompt(NamePrompt, dialog.PromptOptions{Prompt: NamePromptText}), nil
	}
	return dialog.Next(), nil
}

func (f *Flow) saveName(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	st, err := f.state.Get(sc.Turn, nil)
	if err != nil {
		return dialog.StepResult{}, err
	}
	if name, ok := sc.Result.(string); ok && name != "" && strings.TrimSpace(st.Name) == "" {
		st.Name = name
		if err := f.state.Set(sc.Turn, st); err != nil {
			return dialog.StepResult{}, err
		}
	}
	return dialog.Next(), nil
}

func (f *Flow) promptForTopic(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	st, err := f.state.Get(sc.Turn, nil)
	if err != nil {
		return dialog.StepResult{}, err
	}
	if strings.TrimSpace(st.Topic) == "" {
		return dialog.Prompt(TopicPrompt, dialog.PromptOptions{Prompt: TopicPromptText}), nil
	}
	return dialog.Next(), nil
}

func (f *Flow) saveTopic(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	st, err := f.state.Get(sc.Turn, nil)
	if err != nil {
		return dialog.StepResult{}, err
	}
	if topic, ok := sc.Result.(string); ok && topic != "" && strings.TrimSpace(st.Topic) == "" {
		st.Topic = topic
		if err := f.state.Set(sc.Turn, st); err != nil {
			return dialog.StepResult{}, err
		}
	}
	return dialog.Next(), nil
}

func (f *Flow) respond(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	st, err := f.state.Get(sc.Turn, nil)
	if err != nil {
		return dialog.StepResult{}, err
	}
	sc.Send(fmt.Sprintf("Hi %s, give me a moment while I look for information about %s", st.Name, st.Topic))
	return dialog.End(nil), nil
}
