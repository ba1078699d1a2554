package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/ports"
)

// ListConversations prints the stored conversation ids.
func ListConversations(ctx context.Context, store ports.StateStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing conversations: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No stored conversations found.")
		return nil
	}
	fmt.Fprintln(w, "Stored Conversations:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectConversation prints the stored state as indented JSON.
// Pass Services.Inspect to get pii slot keys masked.
func InspectConversation(ctx context.Context, store ports.StateStore, id string, w io.Writer) error {
	state, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading conversation '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling state: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveConversations deletes every id, reporting each one, and returns the joined failures.
func RemoveConversations(ctx context.Context, store ports.StateStore, ids []string, w io.Writer) error {
	var errs []error
	for _, id := range ids {
		err := store.Delete(ctx, id)
		switch {
		case errors.Is(err, domain.ErrConversationNotFound):
			fmt.Fprintf(w, "Conversation '%s' not found\n", id)
		case err != nil:
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
		default:
			fmt.Fprintf(w, "Removed conversation '%s'\n", id)
		}
	}
	return errors.Join(errs...)
}
