package dialog

import "context"

// Step is one stage of a waterfall.
type Step func(ctx context.Context, sc *StepContext) (StepResult, error)

type stepKind int

const (
	stepNext stepKind = iota
	stepBegin
	stepEnd
)

// StepResult tells the dispatcher what to do after a step returns.
type StepResult struct {
	kind    stepKind
	target  string
	options map[string]any
	value   any
}

// Next runs the following step in the same turn. The next step sees a nil Result.
func Next() StepResult {
	return StepResult{kind: stepNext}
}

// NextWith runs the following step in the same turn, handing it value as Result.
func NextWith(value any) StepResult {
	return StepResult{kind: stepNext, value: value}
}

// Prompt pushes the prompt dialog promptID and suspends this waterfall until the
// prompt accepts an answer.
func Prompt(promptID string, opts PromptOptions) StepResult {
	return StepResult{kind: stepBegin, target: promptID, options: opts.toMap()}
}

// BeginDialog pushes any registered dialog as a child of this waterfall.
func BeginDialog(dialogID string, options map[string]any) StepResult {
	return StepResult{kind: stepBegin, target: dialogID, options: options}
}

// End pops this waterfall and hands result to its parent.
func End(result any) StepResult {
	return StepResult{kind: stepEnd, value: result}
}

// Waterfall is an ordered list of steps sharing one frame.
type Waterfall struct {
	id    string
	steps []Step
}

// NewWaterfall creates a waterfall dialog.
func NewWaterfall(id string, steps ...Step) *Waterfall {
	return &Waterfall{id: id, steps: steps}
}

// ID returns the dialog id.
func (w *Waterfall) ID() string {
	return w.id
}

// Len returns the number of steps.
func (w *Waterfall) Len() int {
	return len(w.steps)
}
