package chat

import "strings"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a chat transcript as the client holds it.
type Message struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// LastPrompt returns the most recent message sent by the user.
func LastPrompt(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// LastReply returns the most recent message not sent by the user; this is
// the answer the mind-map is rendered from.
func LastReply(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != RoleUser {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// HasText reports whether s contains any non-whitespace character.
func HasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
