package memory_test

import (
	"context"
	"testing"

	"github.com/hackeddesign/claire/pkg/adapters/memory"
	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	state := domain.NewState("c1")
	state.Stack.Push(domain.NewFrame("root", map[string]any{"k": "v"}))
	require.NoError(t, store.Save(ctx, "c1", state))

	state.Stack[0].Options["k"] = "changed"
	state.Slots["late"] = true

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "v", loaded.Stack[0].Options["k"])
	assert.NotContains(t, loaded.Slots, "late")
}
