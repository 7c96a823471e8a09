package chat

import (
	"strings"
)

const (
	ChatRoleUser   = "user"      // Ruler-side turn
	ChatRoleAgent  = "assistant" // Courtier
	ChatRoleSystem = "system"    // Engine instructions
)

// ChatMessage is a single message sent to a narrative service.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the text returned by a narrative service.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}

// SplitSystem joins all system messages into one prompt and returns the
// remaining conversation messages in order.
func SplitSystem(messages []ChatMessage) (string, []ChatMessage) {
	var systemParts []string
	var rest []ChatMessage
	for _, msg := range messages {
		if msg.Role == ChatRoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		rest = append(rest, msg)
	}
	return strings.Join(systemParts, "\n\n"), rest
}

// Flatten renders messages as a single prompt text for services that take
// one text part.
func Flatten(messages []ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n\n")
}
