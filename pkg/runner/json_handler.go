package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hackeddesign/claire/pkg/domain"
)

// ActivitySystem marks JSON lines that carry runner messages rather than dialog output.
const ActivitySystem domain.ActivityType = "system"

// Envelope is one JSON line written by JSONHandler.
type Envelope struct {
	ConversationID string              `json:"conversation_id,omitempty"`
	Type           domain.ActivityType `json:"type"`
	Text           string              `json:"text"`
}

// JSONHandler implements the IOHandler interface for JSON Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Send writes one activity as a JSON line.
func (h *JSONHandler) Send(ctx context.Context, conversationID string, activity domain.Activity) error {
	return h.encode(Envelope{ConversationID: conversationID, Type: activity.Type, Text: activity.Text})
}

// SystemOutput writes a "system" JSON line.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.encode(Envelope{Type: ActivitySystem, Text: msg})
}

// Input reads one line. It accepts a JSON string, an object with a "text"
// field, or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	line, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSpace(line)

	var text string
	var obj struct {
		Text string `json:"text"`
	}
	switch {
	case json.Unmarshal([]byte(line), &text) == nil:
	case json.Unmarshal([]byte(line), &obj) == nil:
		text = obj.Text
	default:
		text = line
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) encode(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(v)
}
