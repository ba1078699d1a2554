package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/hackeddesign/claire"
	"github.com/hackeddesign/claire/pkg/dialog"
	"github.com/hackeddesign/claire/pkg/domain"
)

// ResetCommand cancels the active dialogs without leaving the loop.
const ResetCommand = "/reset"

// Runner handles the interactive loop of the claire engine using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	Handler        IOHandler
	Logger         *slog.Logger
	ConversationID string
	Intent         string
	IntentOptions  map[string]any
	Fresh          bool

	engine *claire.Engine
}

// NewRunner creates a Runner. Stdin/Stdout text IO is used unless a handler is set.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop until EOF, "exit"/"quit", an interrupt or a fatal error.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		return &domain.ConfigurationError{Component: "runner", Reason: "engine is required"}
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.ConversationID == "" {
		r.ConversationID = uuid.NewString()
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if r.Fresh {
		if err := r.engine.Delete(ctx, r.ConversationID); err != nil && !errors.Is(err, domain.ErrConversationNotFound) {
			return fmt.Errorf("failed to reset conversation: %w", err)
		}
	}

	active, err := r.resume(ctx)
	if err != nil {
		return err
	}

	if r.Intent != "" && !active {
		res, err := r.engine.StartIntent(ctx, r.ConversationID, r.Intent, r.IntentOptions)
		if err != nil {
			return fmt.Errorf("failed to start intent '%s': %w", r.Intent, err)
		}
		if err := r.deliver(ctx, res); err != nil {
			return err
		}
	}

	for {
		text, err := r.Handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if signals.Context().Err() != nil {
				r.Logger.Debug("Runner input: context cancelled", "err", signals.Context().Err())
				_ = r.Handler.SystemOutput(ctx, "Interrupted. Progress is saved.")
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		switch strings.TrimSpace(text) {
		case "exit", "quit":
			return nil
		case ResetCommand:
			if _, err := r.engine.Reset(ctx, r.ConversationID); err != nil {
				return fmt.Errorf("reset error: %w", err)
			}
			_ = r.Handler.SystemOutput(ctx, "Conversation reset.")
			continue
		}

		res, err := r.engine.Turn(ctx, r.ConversationID, &text)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedFrame) {
				r.Logger.Warn("Malformed conversation state", "conversation_id", r.ConversationID, "err", err)
				_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("This conversation cannot continue (%v). Type %s to start over.", err, ResetCommand))
				continue
			}
			return fmt.Errorf("turn error: %w", err)
		}
		if err := r.deliver(ctx, res); err != nil {
			return err
		}
	}
}

// resume re-shows the pending prompt of an active conversation.
func (r *Runner) resume(ctx context.Context) (bool, error) {
	state, err := r.engine.Inspect(ctx, r.ConversationID)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load conversation %s: %w", r.ConversationID, err)
	}
	if !state.Active() {
		return false, nil
	}

	_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Resuming conversation %s", r.ConversationID))
	if text := dialog.PendingPrompt(state); text != "" {
		if err := r.Handler.Send(ctx, r.ConversationID, domain.Prompt(text)); err != nil {
			return true, fmt.Errorf("output error: %w", err)
		}
	}
	return true, nil
}

func (r *Runner) deliver(ctx context.Context, res *claire.TurnResult) error {
	for _, a := range res.Activities {
		if err := r.Handler.Send(ctx, res.ConversationID, a); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}
