package domain

// ActivityType defines how the host should deliver an outbound activity.
type ActivityType string

const (
	// ActivityMessage is a plain message to the user.
	ActivityMessage ActivityType = "message"

	// ActivityPrompt is a message after which the engine expects the user's answer.
	ActivityPrompt ActivityType = "prompt"
)

// Activity is an outbound message produced by a turn.
type Activity struct {
	Type ActivityType `json:"type"`
	Text string       `json:"text"`
}

// Message builds a plain message activity.
func Message(text string) Activity {
	return Activity{Type: ActivityMessage, Text: text}
}

// Prompt builds a prompt activity.
func Prompt(text string) Activity {
	return Activity{Type: ActivityPrompt, Text: text}
}
