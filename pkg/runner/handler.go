package runner

import (
	"context"

	"github.com/hackeddesign/claire/pkg/ports"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Send presents one outbound activity.
	ports.Sender

	// Input reads a response from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. status updates).
	// This is distinct from activities produced by dialogs.
	SystemOutput(ctx context.Context, msg string) error
}
