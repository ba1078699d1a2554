package dialog

import "github.com/hackeddesign/claire/pkg/domain"

const (
	optionPrompt      = "prompt"
	optionRetryPrompt = "retry_prompt"
)

// PromptOptions configures a single prompt invocation.
// Only the texts are kept, in the pushed frame's options.
type PromptOptions struct {
	Prompt      string
	RetryPrompt string
}

func (o PromptOptions) toMap() map[string]any {
	m := map[string]any{optionPrompt: o.Prompt}
	if o.RetryPrompt != "" {
		m[optionRetryPrompt] = o.RetryPrompt
	}
	return m
}

// TextPrompt asks for free text and loops until the named validator accepts it.
type TextPrompt struct {
	id        string
	validator string
}

// NewTextPrompt creates a prompt dialog that validates answers with the
// validator registered under validator.
func NewTextPrompt(id string, validator string) *TextPrompt {
	return &TextPrompt{id: id, validator: validator}
}

// ID returns the dialog id.
func (p *TextPrompt) ID() string {
	return p.id
}

// Validator returns the validator name.
func (p *TextPrompt) Validator() string {
	return p.validator
}

func promptText(options map[string]any, key string) string {
	if options == nil {
		return ""
	}
	s, _ := options[key].(string)
	return s
}

// retryText returns the text to re-issue after a rejected answer.
func retryText(options map[string]any) string {
	if s := promptText(options, optionRetryPrompt); s != "" {
		return s
	}
	return promptText(options, optionPrompt)
}

// PendingPrompt returns the text of the prompt the conversation is suspended
// on, or "" when the active frame is not a prompt.
func PendingPrompt(state *domain.State) string {
	if state == nil {
		return ""
	}
	frame := state.Stack.Current()
	if frame == nil {
		return ""
	}
	return promptText(frame.Options, optionPrompt)
}
