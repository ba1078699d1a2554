package dsl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackeddesign/claire/pkg/dialog"
)

// Builder manages the dialog set construction.
type Builder struct {
	order      []string
	waterfalls map[string]*WaterfallBuilder
	prompts    map[string]*dialog.TextPrompt
}

// New creates a new dialog set builder.
func New() *Builder {
	return &Builder{
		waterfalls: make(map[string]*WaterfallBuilder),
		prompts:    make(map[string]*dialog.TextPrompt),
	}
}

// Waterfall starts (or continues) the definition of a waterfall dialog.
// If the waterfall already exists, it returns the existing builder.
func (b *Builder) Waterfall(id string) *WaterfallBuilder {
	if wb, ok := b.waterfalls[id]; ok {
		return wb
	}
	wb := &WaterfallBuilder{id: id, builder: b}
	b.waterfalls[id] = wb
	b.order = append(b.order, id)
	return wb
}

// Prompt declares a text prompt validated by the named validator.
func (b *Builder) Prompt(id string, validator string) *Builder {
	if _, ok := b.prompts[id]; !ok {
		b.order = append(b.order, id)
	}
	b.prompts[id] = dialog.NewTextPrompt(id, validator)
	return b
}

// Build compiles the declarations into a dialog.Set.
func (b *Builder) Build() (*dialog.Set, error) {
	set := dialog.NewSet()
	var errs []error
	for _, id := range b.order {
		if wb, ok := b.waterfalls[id]; ok {
			if err := set.AddWaterfall(dialog.NewWaterfall(id, wb.steps...)); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := set.AddPrompt(b.prompts[id]); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to build dialog set: %w", err)
	}
	return set, nil
}

// WaterfallBuilder provides a fluent API for appending steps.
type WaterfallBuilder struct {
	id      string
	steps   []dialog.Step
	builder *Builder
}

// Step appends a step.
func (w *WaterfallBuilder) Step(fn dialog.Step) *WaterfallBuilder {
	w.steps = append(w.steps, fn)
	return w
}

// Say appends a step that sends text and moves on.
func (w *WaterfallBuilder) Say(text string) *WaterfallBuilder {
	return w.Step(func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
		sc.Send(text)
		return dialog.Next(), nil
	})
}

// Ask appends a step that always prompts with promptID.
func (w *WaterfallBuilder) Ask(promptID string, text string) *WaterfallBuilder {
	return w.Step(func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
		return dialog.Prompt(promptID, dialog.PromptOptions{Prompt: text}), nil
	})
}

// End appends a step that ends the waterfall with the prior result.
func (w *WaterfallBuilder) End() *Builder {
	w.Step(func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
		return dialog.End(sc.Result), nil
	})
	return w.builder
}

// Done returns the parent builder.
func (w *WaterfallBuilder) Done() *Builder {
	return w.builder
}
