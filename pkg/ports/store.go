package ports

import (
	"context"

	"github.com/hackeddesign/claire/pkg/domain"
)

// StateStore defines the interface for persisting conversation state.
// This allows for durable execution: the process may stop between turns
// and resume from the store with no loss of progress.
type StateStore interface {
	// Save persists the state for a given conversation ID (last write wins).
	Save(ctx context.Context, conversationID string, state *domain.State) error

	// Load retrieves the state for a given conversation ID.
	// Returns domain.ErrConversationNotFound if the conversation does not exist.
	Load(ctx context.Context, conversationID string) (*domain.State, error)

	// Delete removes the state for a given conversation ID.
	Delete(ctx context.Context, conversationID string) error

	// List returns the IDs of all stored conversations.
	List(ctx context.Context) ([]string, error)
}
