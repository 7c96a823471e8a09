package chat

import (
	"testing"
)

func TestSplitSystem(t *testing.T) {
	messages := []ChatMessage{
		{Role: ChatRoleSystem, Content: "You are a courtier."},
		{Role: ChatRoleUser, Content: "Speak."},
		{Role: ChatRoleSystem, Content: "Use tags."},
		{Role: ChatRoleAgent, Content: "Your Majesty..."},
	}

	system, rest := SplitSystem(messages)
	if system != "You are a courtier.\n\nUse tags." {
		t.Errorf("unexpected system prompt %q", system)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 conversation messages, got %d", len(rest))
	}
	if rest[0].Role != ChatRoleUser || rest[1].Role != ChatRoleAgent {
		t.Errorf("conversation order not preserved: %+v", rest)
	}
}

func TestSplitSystem_NoSystem(t *testing.T) {
	system, rest := SplitSystem([]ChatMessage{{Role: ChatRoleUser, Content: "hi"}})
	if system != "" {
		t.Errorf("expected empty system prompt, got %q", system)
	}
	if len(rest) != 1 {
		t.Errorf("expected 1 message, got %d", len(rest))
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		messages []ChatMessage
		expected string
	}{
		{
			name:     "empty",
			messages: nil,
			expected: "",
		},
		{
			name: "joins in order",
			messages: []ChatMessage{
				{Role: ChatRoleSystem, Content: "A"},
				{Role: ChatRoleUser, Content: "B"},
			},
			expected: "A\n\nB",
		},
		{
			name: "skips blank messages",
			messages: []ChatMessage{
				{Role: ChatRoleSystem, Content: "A"},
				{Role: ChatRoleUser, Content: "  "},
				{Role: ChatRoleUser, Content: "C"},
			},
			expected: "A\n\nC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Flatten(tt.messages); got != tt.expected {
				t.Errorf("Flatten() = %q, want %q", got, tt.expected)
			}
		})
	}
}
