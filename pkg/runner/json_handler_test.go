package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Send(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), out)
	ctx := context.Background()

	require.NoError(t, handler.Send(ctx, "c1", domain.Message("Hello")))
	require.NoError(t, handler.Send(ctx, "c1", domain.Prompt("Name?")))
	require.NoError(t, handler.SystemOutput(ctx, "bye"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var first Envelope
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, Envelope{ConversationID: "c1", Type: domain.ActivityMessage, Text: "Hello"}, first)

	var last Envelope
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	assert.Equal(t, ActivitySystem, last.Type)
}

func TestJSONHandler_Input(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"JSON String", "\"Hello World\"\n", "Hello World"},
		{"Object", "{\"text\": \"Alice\"}\n", "Alice"},
		{"Raw Text", "Billing and refunds\n", "Billing and refunds"},
		{"No Trailing Newline", "\"last\"", "last"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewJSONHandler(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := handler.Input(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONHandler_InputEOF(t *testing.T) {
	handler := NewJSONHandler(strings.NewReader(""), &bytes.Buffer{})
	_, err := handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
