package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/hackeddesign/claire"
	"github.com/hackeddesign/claire/internal/presentation/tui"
	"github.com/hackeddesign/claire/pkg/runner"
)

// ChatOptions configures the chat command.
type ChatOptions struct {
	ConversationID string
	Intent         string
	// Options is a raw JSON object passed to the intent's dialogue.
	Options string
	JSON    bool
	Fresh   bool
	Quiet   bool

	In  io.Reader
	Out io.Writer
}

// Chat runs an interactive conversation against engine until the input ends.
func Chat(ctx context.Context, engine *claire.Engine, logger *slog.Logger, opts ChatOptions) error {
	var intentOptions map[string]any
	if opts.Options != "" {
		if err := json.Unmarshal([]byte(opts.Options), &intentOptions); err != nil {
			return fmt.Errorf("error parsing --options JSON: %w", err)
		}
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		if !opts.Quiet {
			tui.PrintBanner(opts.Out, claire.Version)
		}
		handler = runner.NewTextHandler(opts.In, opts.Out,
			runner.WithTextHandlerRenderer(runner.AutoRenderer(opts.Out)))
	}

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithConversationID(opts.ConversationID),
		runner.WithIntent(opts.Intent, intentOptions),
		runner.WithFresh(opts.Fresh),
	)
	err := handleExecutionError(r.Run(ctx))
	if err == nil && !opts.JSON && !opts.Quiet {
		printSystemMessage(opts.Out, "Conversation '%s' saved.", r.ConversationID)
	}
	return err
}
