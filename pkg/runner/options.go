package runner

import (
	"log/slog"

	"github.com/hackeddesign/claire"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithEngine configures the engine that runs turns. Required.
func WithEngine(engine *claire.Engine) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithConversationID resumes (or creates) the given conversation.
// Without it a random id is used.
func WithConversationID(id string) Option {
	return func(r *Runner) {
		r.ConversationID = id
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithIntent begins the intent's dialogue before reading input, unless the
// conversation already has an active dialog.
func WithIntent(intent string, options map[string]any) Option {
	return func(r *Runner) {
		r.Intent = intent
		r.IntentOptions = options
	}
}

// WithFresh deletes any stored state for the conversation before starting.
func WithFresh(fresh bool) Option {
	return func(r *Runner) {
		r.Fresh = fresh
	}
}
