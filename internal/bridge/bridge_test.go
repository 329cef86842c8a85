package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/longkey1/llmdesk/internal/llmdesk/prompt"
	"github.com/longkey1/llmdesk/internal/llmdesk/session"
	"github.com/longkey1/llmdesk/internal/metrics"
	"github.com/longkey1/llmdesk/internal/notify"
	"github.com/longkey1/llmdesk/internal/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeOllama answers /api/chat with a fixed reply and records request bodies.
type fakeOllama struct {
	mu     sync.Mutex
	reply  string
	status int
	bodies []ollama.ChatRequest
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ollama.ChatRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.bodies = append(f.bodies, req)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(ollama.APIError{Message: "model not loaded"})
		return
	}
	_ = json.NewEncoder(w).Encode(ollama.ChatResponse{
		Model:   req.Model,
		Message: ollama.ChatMessage{Role: "assistant", Content: reply},
		Done:    true,
	})
}

type testBridge struct {
	backend *fakeOllama
	server  *Server
	http    *httptest.Server
	client  *Client
	hub     *notify.Hub
	metrics *metrics.Metrics
}

func newTestBridge(t *testing.T) *testBridge {
	t.Helper()

	backend := &fakeOllama{reply: "Hello from the model"}
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	hub := notify.NewHub(nil)
	m := metrics.New()
	manager := session.NewManager(ollama.NewClient(backendSrv.URL), prompt.NewBuilder(nil), session.Options{DefaultTarget: backendSrv.URL})
	service := session.NewService(manager, hub, nil, m)

	srv := NewServer("", service, hub, m, nil)
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(httpSrv.Close)

	return &testBridge{
		backend: backend,
		server:  srv,
		http:    httpSrv,
		client:  NewClient(httpSrv.URL),
		hub:     hub,
		metrics: m,
	}
}

func TestBridgeInitializeAndSendText(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	initResp, err := b.client.Initialize(ctx, session.InitOptions{Profile: "interview", CustomPrompt: "Role: backend engineer"})
	require.NoError(t, err)
	require.True(t, initResp.Success)
	assert.NotEmpty(t, initResp.SessionID)

	resp, err := b.client.SendText(ctx, "Tell me about yourself")
	require.NoError(t, err)
	assert.Equal(t, session.Response{Success: true, SessionID: initResp.SessionID}, resp)

	require.Len(t, b.backend.bodies, 1)
	sent := b.backend.bodies[0]
	assert.False(t, sent.Stream)
	require.Len(t, sent.Messages, 2)
	assert.Equal(t, "system", sent.Messages[0].Role)
	assert.Contains(t, sent.Messages[0].Content, "Role: backend engineer")
	assert.Equal(t, "Tell me about yourself", sent.Messages[1].Content)

	current, err := b.client.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current.Data)
	assert.Equal(t, initResp.SessionID, current.Data.SessionID)
	assert.Len(t, current.Data.History, 3)
}

func TestBridgeBackendFailure(t *testing.T) {
	b := newTestBridge(t)
	b.backend.status = http.StatusInternalServerError
	ctx := context.Background()

	_, err := b.client.Initialize(ctx, session.InitOptions{})
	require.NoError(t, err)

	resp, err := b.client.SendText(ctx, "Hello")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "model not loaded")

	current, err := b.client.Current(ctx)
	require.NoError(t, err)
	assert.Len(t, current.Data.History, 1)
}

func TestBridgeAudioAndLifecycle(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	audio, err := b.client.SendAudio(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Response{Success: false, Error: "Audio not supported with Ollama integration"}, audio)

	started, err := b.client.StartNew(ctx)
	require.NoError(t, err)
	assert.True(t, started.Success)
	assert.NotEmpty(t, started.SessionID)

	closed, err := b.client.Close(ctx)
	require.NoError(t, err)
	assert.True(t, closed.Success)

	current, err := b.client.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Data.SessionID)
	assert.Empty(t, current.Data.History)

	raw, err := http.Get(b.http.URL + "/api/session")
	require.NoError(t, err)
	defer raw.Body.Close()
	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&body))
	require.NotNil(t, body.Data)
	id, ok := body.Data["sessionId"]
	assert.True(t, !ok || string(id) == "null", "closed session reported sessionId %s", id)
	assert.JSONEq(t, `[]`, string(body.Data["history"]))
}

func TestBridgeRejectsMalformedBody(t *testing.T) {
	b := newTestBridge(t)

	resp, err := http.Post(b.http.URL+"/api/session/text", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, b.backend.bodies)
}

func TestBridgeQuit(t *testing.T) {
	b := newTestBridge(t)

	resp, err := b.client.Quit(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Success)

	select {
	case <-b.server.Quit():
	case <-time.After(time.Second):
		t.Fatal("quit channel not closed")
	}

	// a second quit must not panic
	_, err = b.client.Quit(context.Background())
	assert.NoError(t, err)
}

func TestBridgeEventsWebsocket(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	wsURL := "ws" + strings.TrimPrefix(b.http.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, b.hub.Attached, time.Second, 10*time.Millisecond)

	_, err = b.client.Initialize(ctx, session.InitOptions{})
	require.NoError(t, err)
	_, err = b.client.SendText(ctx, "What is Go?")
	require.NoError(t, err)

	var got []notify.Channel
	var first, last map[string]any
	for i := 0; i < 3; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		var event map[string]any
		require.NoError(t, conn.ReadJSON(&event))
		got = append(got, notify.Channel(event["channel"].(string)))
		if first == nil {
			first = event
		}
		last = event
		if event["channel"] == string(notify.ChannelTurnSaved) {
			payload := event["payload"].(map[string]any)
			history := payload["fullHistory"].([]any)
			assert.Len(t, history, 1)
		}
	}

	assert.Equal(t, []notify.Channel{notify.ChannelStatus, notify.ChannelTurnSaved, notify.ChannelResponse}, got)
	assert.Equal(t, "Hello from the model", last["payload"])
	assert.Equal(t, session.StatusReady, first["payload"])
}

func TestBridgeDetachOnDisconnect(t *testing.T) {
	b := newTestBridge(t)

	wsURL := "ws" + strings.TrimPrefix(b.http.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.Eventually(t, b.hub.Attached, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return !b.hub.Attached() }, time.Second, 10*time.Millisecond)
}

func TestBridgeRejectsForeignOrigin(t *testing.T) {
	b := newTestBridge(t)

	wsURL := "ws" + strings.TrimPrefix(b.http.URL, "http") + "/events"
	header := http.Header{"Origin": []string{"https://example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, b.hub.Attached())
}

func TestBridgeMetricsEndpoint(t *testing.T) {
	b := newTestBridge(t)
	b.client.SendAudio(context.Background())

	resp, err := http.Get(b.http.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `llmdesk_turns_total{kind="audio",outcome="unsupported"} 1`)
}

func TestBridgeCORS(t *testing.T) {
	b := newTestBridge(t)

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, b.http.URL+"/api/session/text", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	local := preflight("http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", local.Header.Get("Access-Control-Allow-Origin"))

	foreign := preflight("https://example.com")
	assert.Empty(t, foreign.Header.Get("Access-Control-Allow-Origin"))
}

func TestIsLocalOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:3000", true},
		{"http://127.0.0.1:8765", true},
		{"http://[::1]:8765", true},
		{"https://example.com", false},
		{"http://192.168.1.10:3000", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isLocalOrigin(tt.origin), tt.origin)
	}
}
