package ports

import (
	"context"
	"testing"
	"time"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	conversationID := "contract-test-conversation-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(conversationID)
		state.Slots["enquiryState"] = map[string]any{"name": "Alice", "topic": ""}
		state.Stack.Push(domain.Frame{DialogID: "enquiryDialog", Cursor: 3})
		state.Stack.Push(domain.Frame{
			DialogID: "topicPrompt",
			Cursor:   0,
			Options:  map[string]any{"prompt": "What topic can I help you with?"},
		})
		state.Status = domain.StatusActive
		state.Turns = 2

		err := store.Save(ctx, conversationID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, conversationID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, conversationID, loaded.ConversationID)
		assert.Equal(t, domain.StatusActive, loaded.Status)
		assert.Equal(t, 2, loaded.Turns)

		// The continuation must survive the round trip exactly.
		require.Len(t, loaded.Stack, 2)
		assert.Equal(t, "enquiryDialog", loaded.Stack[0].DialogID)
		assert.Equal(t, 3, loaded.Stack[0].Cursor)
		assert.Equal(t, "topicPrompt", loaded.Stack[1].DialogID)
		assert.Equal(t, 0, loaded.Stack[1].Cursor)
		assert.Equal(t, "What topic can I help you with?", loaded.Stack[1].Options["prompt"])

		// Slots may come back as generic maps depending on the encoding.
		require.NotNil(t, loaded.Slots["enquiryState"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+conversationID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		state := domain.NewState(conversationID)
		state.Turns = 7
		require.NoError(t, store.Save(ctx, conversationID, state))

		loaded, err := store.Load(ctx, conversationID)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.Turns)
		assert.Empty(t, loaded.Stack, "last write wins, including an emptied stack")
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, conversationID, domain.NewState(conversationID))
		require.NoError(t, err)

		err = store.Delete(ctx, conversationID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, conversationID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound, "Load after Delete should return ErrConversationNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := conversationID + "-1"
		id2 := conversationID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		conversations, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, conversations, id1)
		assert.Contains(t, conversations, id2)
	})
}
