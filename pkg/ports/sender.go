package ports

import (
	"context"

	"github.com/hackeddesign/claire/pkg/domain"
)

// Sender delivers outbound activities to the channel that owns a conversation.
// Delivery is fire-and-forget from the engine's perspective.
type Sender interface {
	Send(ctx context.Context, conversationID string, activity domain.Activity) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, conversationID string, activity domain.Activity) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, conversationID string, activity domain.Activity) error {
	return f(ctx, conversationID, activity)
}
