// Package session owns the conversation state of the assistant: the current
// session id, the ordered message history and the sequencing of turns against
// the inference backend.
//
// A Manager never talks to a UI. Operations return the events they produce and
// the host (see Service) forwards them to a notify.Sink.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/longkey1/llmdesk/internal/llmdesk"
	"github.com/longkey1/llmdesk/internal/notify"
)

// StatusReady is the status text emitted after a successful initialization.
const StatusReady = "Ollama session ready"

var (
	// ErrPromptBuild reports that the system prompt could not be constructed.
	ErrPromptBuild = errors.New("prompt construction failed")
	// ErrBackend reports that the inference call failed.
	ErrBackend = errors.New("backend request failed")
	// ErrUnsupported reports an operation the backend integration cannot serve.
	ErrUnsupported = errors.New("Audio not supported with Ollama integration")
)

// PromptBuilder produces the system prompt for a profile.
type PromptBuilder interface {
	Build(profileID, customPrompt string, webSearch bool) (string, error)
}

// Options configures a Manager.
type Options struct {
	DefaultTarget string // used when Initialize names no backend target
	DefaultModel  string
	WebSearch     bool // passed through to the prompt builder
}

// InitOptions are the arguments of Initialize.
type InitOptions struct {
	BackendTarget string `json:"host"`
	Model         string `json:"model"`
	CustomPrompt  string `json:"customPrompt"`
	Profile       string `json:"profile"`
}

// Snapshot is a copy of the current session state. SessionID is empty, and
// omitted from JSON, when no session is active.
type Snapshot struct {
	SessionID string            `json:"sessionId,omitempty"`
	History   []llmdesk.Message `json:"history"`
}

// TurnSaved is the payload of the save-conversation-turn event.
type TurnSaved struct {
	SessionID   string             `json:"sessionId"`
	Turn        ConversationTurn   `json:"turn"`
	FullHistory []ConversationTurn `json:"fullHistory"`
}

// Result describes a completed turn.
type Result struct {
	SessionID  string
	Turn       ConversationTurn
	Reply      string
	HistoryLen int
	Lazy       bool // the turn created the session
	Events     []notify.Event
}

// Manager owns the single active session of the process.
//
// Turn submissions must be serialized by the caller: two in-flight submissions
// would both build their candidate list from the same history. The internal
// mutex only protects state reads and commits, it is never held across a
// backend call.
type Manager struct {
	mu            sync.Mutex
	client        llmdesk.Client
	prompts       PromptBuilder
	defaultTarget string
	defaultModel  string
	webSearch     bool
	model         string
	current       *Session // nil while uninitialized
}

// NewManager creates an uninitialized manager. The client is bound to the
// default target so that a turn submitted before Initialize still works.
func NewManager(client llmdesk.Client, prompts PromptBuilder, opts Options) *Manager {
	if opts.DefaultTarget == "" {
		opts.DefaultTarget = llmdesk.DefaultBackendTarget
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = llmdesk.DefaultModel
	}
	client.Configure(opts.DefaultTarget)

	return &Manager{
		client:        client,
		prompts:       prompts,
		defaultTarget: opts.DefaultTarget,
		defaultModel:  opts.DefaultModel,
		webSearch:     opts.WebSearch,
		model:         opts.DefaultModel,
	}
}

// Initialize starts a fresh session seeded with the profile's system prompt.
// On failure nothing changes: the binding, id and history stay as they were.
func (m *Manager) Initialize(opts InitOptions) ([]notify.Event, error) {
	target := opts.BackendTarget
	if target == "" {
		target = m.defaultTarget
	}
	model := opts.Model
	if model == "" {
		model = m.defaultModel
	}
	profile := opts.Profile
	if profile == "" {
		profile = llmdesk.DefaultProfile
	}

	systemPrompt, err := m.prompts.Build(profile, opts.CustomPrompt, m.webSearch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPromptBuild, err)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: profile %q produced an empty prompt", ErrPromptBuild, profile)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.Configure(target)
	m.model = model

	sess := NewSession(model, m.client.Target())
	sess.Profile = profile
	sess.AddMessage(llmdesk.NewMessage(llmdesk.RoleSystem, systemPrompt))
	m.current = sess

	return []notify.Event{{Channel: notify.ChannelStatus, Payload: StatusReady}}, nil
}

// SubmitText sends a user text turn and commits it together with the reply.
func (m *Manager) SubmitText(ctx context.Context, text string) (Result, error) {
	return m.submit(ctx, llmdesk.NewMessage(llmdesk.RoleUser, text))
}

// SubmitImage sends an image-only user turn. data is passed to the backend as is.
func (m *Manager) SubmitImage(ctx context.Context, data string) (Result, error) {
	return m.submit(ctx, llmdesk.NewMessage(llmdesk.RoleUser, "", data))
}

func (m *Manager) submit(ctx context.Context, userMsg llmdesk.Message) (Result, error) {
	m.mu.Lock()
	var history []llmdesk.Message
	if m.current != nil {
		history = m.current.Messages
	}
	candidate := append(llmdesk.CloneMessages(history), userMsg)
	client, model := m.client, m.model
	m.mu.Unlock()

	reply, err := client.Chat(ctx, candidate, model)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A turn always lands in a session; create one if none is active
	lazy := false
	if m.current == nil {
		m.current = NewSession(m.model, m.client.Target())
		lazy = true
	}
	m.current.AddMessage(userMsg)
	m.current.AddMessage(llmdesk.NewMessage(llmdesk.RoleAssistant, reply))

	turns := m.current.Turns()
	turn := turns[len(turns)-1]

	return Result{
		SessionID:  m.current.ID,
		Turn:       turn,
		Reply:      reply,
		HistoryLen: len(m.current.Messages),
		Lazy:       lazy,
		Events: []notify.Event{
			{
				Channel: notify.ChannelTurnSaved,
				Payload: TurnSaved{SessionID: m.current.ID, Turn: turn, FullHistory: turns},
			},
			{Channel: notify.ChannelResponse, Payload: reply},
		},
	}, nil
}

// Close ends the active session. The backend binding is kept.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// StartNew replaces the active session with an empty one, keeping the bound
// model, target and profile. No system prompt is added.
func (m *Manager) StartNew() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := NewSession(m.model, m.client.Target())
	if m.current != nil {
		sess.Profile = m.current.Profile
	}
	m.current = sess
	return sess.ID
}

// Current returns a copy of the active session id and history.
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Snapshot{History: []llmdesk.Message{}}
	}
	return Snapshot{
		SessionID: m.current.ID,
		History:   llmdesk.CloneMessages(m.current.Messages),
	}
}

// Info returns a copy of the active session, or nil while uninitialized.
func (m *Manager) Info() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	sess := *m.current
	sess.Messages = llmdesk.CloneMessages(m.current.Messages)
	return &sess
}

// Binding returns the bound backend target and model.
func (m *Manager) Binding() (target, model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client.Target(), m.model
}

// Active reports whether a session is active.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
