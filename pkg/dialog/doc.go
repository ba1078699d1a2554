/*
Package dialog implements the turn-based dialog runtime: waterfalls, text prompts,
typed slot accessors and the stack dispatcher that resumes a conversation from its
persisted continuation.

A conversation's progress lives entirely in domain.State. Each frame on the stack
records which dialog is active and the index of the last step it ran, so a fresh
process can pick up any conversation from the store without volatile memory.

	set := dialog.NewSet()
	_ = set.AddWaterfall(dialog.NewWaterfall("greet",
		func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
			return dialog.Prompt("askName", dialog.PromptOptions{Prompt: "Who are you?"}), nil
		},
		func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
			sc.Send(fmt.Sprintf("Hello %v", sc.Result))
			return dialog.End(nil), nil
		},
	))
	_ = set.AddPrompt(dialog.NewTextPrompt("askName", "non-empty"))

	d, err := dialog.NewDispatcher(set, validators)
	...
	res, err := d.Turn(ctx, dialog.NewTurnContext(state, &text, time.Now()), "greet", nil)

The dispatcher mutates the state in place. Persisting it, and only then handing
tc.Activities() to the channel, is the caller's job.
*/
package dialog
