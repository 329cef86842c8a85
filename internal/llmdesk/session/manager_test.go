package session

import (
	"context"
	"errors"
	"testing"

	"github.com/longkey1/llmdesk/internal/llmdesk"
	"github.com/longkey1/llmdesk/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	target string
	reply  string
	err    error
	calls  [][]llmdesk.Message
	models []string
	onChat func()
}

func (f *fakeClient) Configure(target string) { f.target = target }
func (f *fakeClient) Target() string          { return f.target }

func (f *fakeClient) Chat(ctx context.Context, messages []llmdesk.Message, model string) (string, error) {
	f.calls = append(f.calls, messages)
	f.models = append(f.models, model)
	if f.onChat != nil {
		f.onChat()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClient) ListModels(ctx context.Context) ([]llmdesk.ModelInfo, error) {
	return nil, nil
}

type fakeBuilder struct {
	err   error
	calls []string
}

func (f *fakeBuilder) Build(profileID, customPrompt string, webSearch bool) (string, error) {
	f.calls = append(f.calls, profileID)
	if f.err != nil {
		return "", f.err
	}
	return "system prompt for " + profileID + ": " + customPrompt, nil
}

func newTestManager(client *fakeClient, builder *fakeBuilder) *Manager {
	return NewManager(client, builder, Options{DefaultTarget: "http://default:11434"})
}

func TestNewManagerBindsDefaults(t *testing.T) {
	client := &fakeClient{}
	m := NewManager(client, &fakeBuilder{}, Options{})

	target, model := m.Binding()
	assert.Equal(t, llmdesk.DefaultBackendTarget, target)
	assert.Equal(t, llmdesk.DefaultModel, model)
	assert.False(t, m.Active())
	assert.Equal(t, Snapshot{History: []llmdesk.Message{}}, m.Current())
}

func TestInitializeTwiceResetsSession(t *testing.T) {
	m := newTestManager(&fakeClient{reply: "ok"}, &fakeBuilder{})

	events, err := m.Initialize(InitOptions{Profile: "interview"})
	require.NoError(t, err)
	assert.Equal(t, []notify.Event{{Channel: notify.ChannelStatus, Payload: StatusReady}}, events)
	first := m.Current()

	_, err = m.SubmitText(context.Background(), "Hello")
	require.NoError(t, err)

	_, err = m.Initialize(InitOptions{Profile: "sales", CustomPrompt: "ACME"})
	require.NoError(t, err)
	second := m.Current()

	assert.NotEmpty(t, first.SessionID)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	require.Len(t, second.History, 1)
	assert.Equal(t, llmdesk.RoleSystem, second.History[0].Role)
	assert.Equal(t, "system prompt for sales: ACME", second.History[0].Content)
}

func TestInitializeBinding(t *testing.T) {
	client := &fakeClient{}
	m := newTestManager(client, &fakeBuilder{})

	_, err := m.Initialize(InitOptions{})
	require.NoError(t, err)
	target, model := m.Binding()
	assert.Equal(t, "http://default:11434", target)
	assert.Equal(t, llmdesk.DefaultModel, model)
	assert.Equal(t, llmdesk.DefaultProfile, m.Info().Profile)

	_, err = m.Initialize(InitOptions{BackendTarget: "http://gpu:11434", Model: "llava"})
	require.NoError(t, err)
	target, model = m.Binding()
	assert.Equal(t, "http://gpu:11434", target)
	assert.Equal(t, "llava", model)
}

func TestInitializePromptFailureLeavesStateUntouched(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("bad profile file")}
	client := &fakeClient{}
	m := newTestManager(client, builder)

	_, err := m.Initialize(InitOptions{BackendTarget: "http://gpu:11434", Model: "llava"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPromptBuild)
	assert.False(t, m.Active())
	target, model := m.Binding()
	assert.Equal(t, "http://default:11434", target)
	assert.Equal(t, llmdesk.DefaultModel, model)

	builder.err = nil
	_, err = m.Initialize(InitOptions{})
	require.NoError(t, err)
	before := m.Current()

	builder.err = errors.New("boom")
	_, err = m.Initialize(InitOptions{})
	require.Error(t, err)
	assert.Equal(t, before, m.Current())
}

func TestSubmitTextCommitsTurn(t *testing.T) {
	client := &fakeClient{reply: "  Hi, how can I help?  "}
	m := newTestManager(client, &fakeBuilder{})
	_, err := m.Initialize(InitOptions{Profile: "interview"})
	require.NoError(t, err)

	result, err := m.SubmitText(context.Background(), "  Hello  ")
	require.NoError(t, err)

	history := m.Current().History
	require.Len(t, history, 3)
	assert.Equal(t, llmdesk.RoleUser, history[1].Role)
	assert.Equal(t, "  Hello  ", history[1].Content)
	assert.Equal(t, llmdesk.RoleAssistant, history[2].Role)
	assert.Equal(t, "  Hi, how can I help?  ", history[2].Content)

	assert.Equal(t, "Hello", result.Turn.Transcription)
	assert.Equal(t, "Hi, how can I help?", result.Turn.AIResponse)
	assert.False(t, result.Turn.Timestamp.IsZero())
	assert.Equal(t, 3, result.HistoryLen)
	assert.False(t, result.Lazy)

	require.Len(t, result.Events, 2)
	assert.Equal(t, notify.ChannelTurnSaved, result.Events[0].Channel)
	saved, ok := result.Events[0].Payload.(TurnSaved)
	require.True(t, ok)
	assert.Equal(t, m.Current().SessionID, saved.SessionID)
	assert.Equal(t, result.Turn, saved.Turn)
	assert.Equal(t, []ConversationTurn{result.Turn}, saved.FullHistory)
	assert.Equal(t, notify.Event{Channel: notify.ChannelResponse, Payload: "  Hi, how can I help?  "}, result.Events[1])

	// the backend saw history + the candidate user message
	require.Len(t, client.calls, 1)
	require.Len(t, client.calls[0], 2)
	assert.Equal(t, llmdesk.RoleSystem, client.calls[0][0].Role)
	assert.Equal(t, "  Hello  ", client.calls[0][1].Content)
	assert.Equal(t, []string{llmdesk.DefaultModel}, client.models)
}

func TestSubmitImageCommitsTurn(t *testing.T) {
	client := &fakeClient{reply: "A cat on a sofa."}
	m := newTestManager(client, &fakeBuilder{})
	_, err := m.Initialize(InitOptions{})
	require.NoError(t, err)

	result, err := m.SubmitImage(context.Background(), "iVBORw0KGgo=")
	require.NoError(t, err)

	history := m.Current().History
	require.Len(t, history, 3)
	assert.Equal(t, llmdesk.RoleUser, history[1].Role)
	assert.Equal(t, "", history[1].Content)
	assert.Equal(t, []string{"iVBORw0KGgo="}, history[1].Images)
	assert.Equal(t, ImageSentinel, result.Turn.Transcription)
	assert.Equal(t, []string{"iVBORw0KGgo="}, client.calls[0][1].Images)
}

func TestSubmitFailureLeavesHistoryUnchanged(t *testing.T) {
	client := &fakeClient{reply: "fine"}
	m := newTestManager(client, &fakeBuilder{})
	_, err := m.Initialize(InitOptions{})
	require.NoError(t, err)
	_, err = m.SubmitText(context.Background(), "first")
	require.NoError(t, err)
	before := m.Current()

	client.err = errors.New("connection refused")

	result, err := m.SubmitText(context.Background(), "second")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackend)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, result.Events)
	assert.Equal(t, before, m.Current())

	_, err = m.SubmitImage(context.Background(), "aW1n")
	require.Error(t, err)
	assert.Len(t, m.Current().History, 3)
}

func TestCandidateNotCommittedWhilePending(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	m := newTestManager(client, &fakeBuilder{})
	_, err := m.Initialize(InitOptions{})
	require.NoError(t, err)

	var during int
	client.onChat = func() { during = len(m.Current().History) }

	_, err = m.SubmitText(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, 1, during)
	assert.Len(t, m.Current().History, 3)
}

func TestCloseClearsSession(t *testing.T) {
	m := newTestManager(&fakeClient{reply: "ok"}, &fakeBuilder{})
	_, err := m.Initialize(InitOptions{})
	require.NoError(t, err)
	_, err = m.SubmitText(context.Background(), "Hello")
	require.NoError(t, err)

	m.Close()

	snap := m.Current()
	assert.Empty(t, snap.SessionID)
	assert.Empty(t, snap.History)
	assert.Nil(t, m.Info())

	// closing twice is fine
	m.Close()
	assert.False(t, m.Active())
}

func TestStartNewPreservesBinding(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	m := newTestManager(client, &fakeBuilder{})
	_, err := m.Initialize(InitOptions{BackendTarget: "http://gpu:11434", Model: "llava", Profile: "exam"})
	require.NoError(t, err)
	_, err = m.SubmitText(context.Background(), "Hello")
	require.NoError(t, err)
	before := m.Current().SessionID

	id := m.StartNew()

	assert.NotEqual(t, before, id)
	assert.Equal(t, id, m.Current().SessionID)
	assert.Empty(t, m.Current().History)
	assert.Equal(t, "exam", m.Info().Profile)
	target, model := m.Binding()
	assert.Equal(t, "http://gpu:11434", target)
	assert.Equal(t, "llava", model)

	_, err = m.SubmitText(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, "llava", client.models[len(client.models)-1])
}

func TestScenarioInterviewConversation(t *testing.T) {
	client := &fakeClient{reply: "reply"}
	m := newTestManager(client, &fakeBuilder{})

	_, err := m.Initialize(InitOptions{Profile: "interview"})
	require.NoError(t, err)

	_, err = m.SubmitText(context.Background(), "Hello")
	require.NoError(t, err)
	history := m.Current().History
	require.Len(t, history, 3)
	assert.Equal(t, []llmdesk.Role{llmdesk.RoleSystem, llmdesk.RoleUser, llmdesk.RoleAssistant},
		[]llmdesk.Role{history[0].Role, history[1].Role, history[2].Role})
	assert.Equal(t, "Hello", history[1].Content)

	result, err := m.SubmitText(context.Background(), "Follow-up")
	require.NoError(t, err)
	assert.Len(t, m.Current().History, 5)
	assert.Equal(t, "Follow-up", result.Turn.Transcription)

	saved := result.Events[0].Payload.(TurnSaved)
	require.Len(t, saved.FullHistory, 2)
	assert.Equal(t, "Hello", saved.FullHistory[0].Transcription)
	assert.Equal(t, "Follow-up", saved.FullHistory[1].Transcription)

	// second call carried the full prior conversation
	assert.Len(t, client.calls[1], 4)
}

func TestScenarioLazySession(t *testing.T) {
	client := &fakeClient{reply: "Hello!"}
	m := newTestManager(client, &fakeBuilder{})

	result, err := m.SubmitText(context.Background(), "Hi")
	require.NoError(t, err)

	snap := m.Current()
	assert.NotEmpty(t, snap.SessionID)
	assert.Equal(t, snap.SessionID, result.SessionID)
	assert.True(t, result.Lazy)
	require.Len(t, snap.History, 2)
	assert.Equal(t, llmdesk.RoleUser, snap.History[0].Role)
	assert.Equal(t, llmdesk.RoleAssistant, snap.History[1].Role)
	assert.Equal(t, "http://default:11434", client.target)

	// no system prompt was sent either
	require.Len(t, client.calls[0], 1)
	assert.Equal(t, llmdesk.RoleUser, client.calls[0][0].Role)
}

func TestLazySessionAfterClose(t *testing.T) {
	m := newTestManager(&fakeClient{reply: "ok"}, &fakeBuilder{})
	_, err := m.Initialize(InitOptions{})
	require.NoError(t, err)
	closed := m.Current().SessionID
	m.Close()

	result, err := m.SubmitText(context.Background(), "Hi")
	require.NoError(t, err)
	assert.True(t, result.Lazy)
	assert.NotEqual(t, closed, result.SessionID)
	assert.Len(t, m.Current().History, 2)
}

func TestCurrentReturnsCopy(t *testing.T) {
	m := newTestManager(&fakeClient{reply: "ok"}, &fakeBuilder{})
	_, err := m.SubmitImage(context.Background(), "aW1n")
	require.NoError(t, err)

	snap := m.Current()
	snap.History[0].Images[0] = "tampered"
	snap.History = append(snap.History, llmdesk.NewMessage(llmdesk.RoleUser, "x"))

	fresh := m.Current()
	assert.Len(t, fresh.History, 2)
	assert.Equal(t, "aW1n", fresh.History[0].Images[0])
}
