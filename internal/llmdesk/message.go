package llmdesk

import (
	"slices"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
// Messages are never modified once appended to a session history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`          // may be empty for image-only turns
	Images    []string  `json:"images,omitempty"` // base64 image payloads, passed through opaquely
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string, images ...string) Message {
	msg := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	if len(images) > 0 {
		msg.Images = slices.Clone(images)
	}
	return msg
}

// Clone returns a copy that shares no backing arrays with m.
func (m Message) Clone() Message {
	m.Images = slices.Clone(m.Images)
	return m
}

// CloneMessages copies a message slice, images included.
func CloneMessages(msgs []Message) []Message {
	copied := make([]Message, len(msgs))
	for i, msg := range msgs {
		copied[i] = msg.Clone()
	}
	return copied
}
