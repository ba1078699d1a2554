/*
Package dsl provides a fluent builder for assembling a dialog.Set in code.

Example usage:

	b := dsl.New()

	b.Waterfall("greet").
		Say("Welcome!").
		Ask("namePrompt", "What is your name?").
		Step(func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
			sc.Send(fmt.Sprintf("Nice to meet you, %v!", sc.Result))
			return dialog.End(sc.Result), nil
		})

	b.Prompt("namePrompt", "non-empty")

	set, err := b.Build()
	// ... pass set to dialog.NewDispatcher(set, validators)
*/
package dsl
