package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/llmdesk/internal/llmdesk"
)

// ImageSentinel is the transcription recorded for image-only turns.
const ImageSentinel = "[image]"

// Session represents one conversation lifetime
type Session struct {
	ID            string            `json:"id"` // UUIDv7, embeds the creation time
	Profile       string            `json:"profile"`
	Model         string            `json:"model"`
	BackendTarget string            `json:"backend_target"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Messages      []llmdesk.Message `json:"messages"`
}

// ConversationTurn pairs one user input with the model's reply to it
type ConversationTurn struct {
	Timestamp     time.Time `json:"timestamp"`
	Transcription string    `json:"transcription"`
	AIResponse    string    `json:"ai_response"`
}

// NewSession creates an empty session bound to model and target
func NewSession(model, target string) *Session {
	now := time.Now()
	return &Session{
		ID:            uuid.Must(uuid.NewV7()).String(),
		Model:         model,
		BackendTarget: target,
		CreatedAt:     now,
		UpdatedAt:     now,
		Messages:      []llmdesk.Message{},
	}
}

// AddMessage appends msg to the history
func (s *Session) AddMessage(msg llmdesk.Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// GetShortID returns the shortened session ID (first 8 characters)
func (s *Session) GetShortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// MessageCount returns the number of messages in the session
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// Turns derives the conversation turns by pairing each user message with the
// assistant message that immediately follows it.
func (s *Session) Turns() []ConversationTurn {
	turns := []ConversationTurn{}
	for i := 0; i+1 < len(s.Messages); i++ {
		user, reply := s.Messages[i], s.Messages[i+1]
		if user.Role != llmdesk.RoleUser || reply.Role != llmdesk.RoleAssistant {
			continue
		}
		turns = append(turns, ConversationTurn{
			Timestamp:     reply.Timestamp,
			Transcription: transcription(user),
			AIResponse:    strings.TrimSpace(reply.Content),
		})
		i++
	}
	return turns
}

func transcription(msg llmdesk.Message) string {
	if msg.Content == "" && len(msg.Images) > 0 {
		return ImageSentinel
	}
	return strings.TrimSpace(msg.Content)
}
