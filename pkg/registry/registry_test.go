package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Validate(t *testing.T) {
	reg := NewRegistry()
	reg.Register("non-empty", func(input string) Verdict {
		if input == "" {
			return Reject("say something")
		}
		return Accept(input)
	})

	v, err := reg.Validate("non-empty", "hi")
	require.NoError(t, err)
	assert.True(t, v.Accept)
	assert.Equal(t, "hi", v.Value)

	v, err = reg.Validate("non-empty", "")
	require.NoError(t, err)
	assert.False(t, v.Accept)
	assert.Equal(t, "say something", v.Message)

	_, err = reg.Validate("missing", "hi")
	assert.Error(t, err)
}

func TestRegistry_Overwrite(t *testing.T) {
	reg := NewRegistry()
	reg.Register("v", func(string) Verdict { return Reject("") })
	reg.Register("v", AcceptTrimmed)

	v, err := reg.Validate("v", "  padded  ")
	require.NoError(t, err)
	assert.True(t, v.Accept)
	assert.Equal(t, "padded", v.Value)
	assert.Equal(t, []string{"v"}, reg.Names())
}
