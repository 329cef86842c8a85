package ollama

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/longkey1/llmdesk/internal/llmdesk"
)

const (
	chatPath = "/api/chat"
	tagsPath = "/api/tags"
)

// ChatRequest represents the request body for Ollama's chat endpoint
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// ChatMessage represents a message in the conversation
type ChatMessage struct {
	Role    string   `json:"role"` // "system", "user" or "assistant"
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64 encoded images
}

// ChatResponse represents a non-streamed response from the chat endpoint
type ChatResponse struct {
	Model     string      `json:"model"`
	CreatedAt time.Time   `json:"created_at"`
	Message   ChatMessage `json:"message"`
	Done      bool        `json:"done"`
}

// TagsResponse represents the response from the tags endpoint
type TagsResponse struct {
	Models []ModelData `json:"models"`
}

// ModelData represents a single installed model
type ModelData struct {
	Name       string       `json:"name"`
	Model      string       `json:"model"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Details    ModelDetails `json:"details"`
}

// ModelDetails describes a model's family and size
type ModelDetails struct {
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
}

// APIError represents an error body returned by the backend
type APIError struct {
	Message string `json:"error"`
}

// Client implements the llmdesk.Client interface for Ollama
type Client struct {
	mu     sync.RWMutex
	target string
	resty  *resty.Client
	debug  bool
}

// NewClient creates a new Ollama client bound to target
func NewClient(target string) *Client {
	c := &Client{}
	c.Configure(target)
	return c
}

// SetDebug enables or disables request logging on the underlying client
func (c *Client) SetDebug(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug = enabled
	c.resty.SetDebug(enabled)
}

// Configure rebinds the client to target, replacing any prior binding
func (c *Client) Configure(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if normalized, err := llmdesk.NormalizeBackendTarget(target); err == nil {
		target = normalized
	}

	// One attempt per call and no client timeout: the transport decides when a call fails
	c.target = target
	c.resty = resty.New().
		SetBaseURL(target).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "llmdesk").
		SetDebug(c.debug)
}

// Target returns the bound backend target
func (c *Client) Target() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target
}

func (c *Client) client() *resty.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resty
}

// Chat sends the ordered message list to the chat endpoint and returns the reply text
func (c *Client) Chat(ctx context.Context, messages []llmdesk.Message, model string) (string, error) {
	reqBody := ChatRequest{
		Model:    model,
		Messages: make([]ChatMessage, 0, len(messages)),
		Stream:   false,
	}
	for _, msg := range messages {
		reqBody.Messages = append(reqBody.Messages, ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
			Images:  msg.Images,
		})
	}

	resp, err := c.client().R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&ChatResponse{}).
		SetError(&APIError{}).
		Post(chatPath)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	if resp.IsError() {
		return "", apiError(resp)
	}

	result, ok := resp.Result().(*ChatResponse)
	if !ok || result == nil {
		return "", fmt.Errorf("error parsing response: unexpected body %q", truncate(resp.String()))
	}
	if result.Message.Role != "" && result.Message.Role != string(llmdesk.RoleAssistant) {
		return "", fmt.Errorf("unexpected reply role: %s", result.Message.Role)
	}

	return result.Message.Content, nil
}

// ListModels returns the models installed on the backend, sorted by name
func (c *Client) ListModels(ctx context.Context) ([]llmdesk.ModelInfo, error) {
	resp, err := c.client().R().
		SetContext(ctx).
		SetResult(&TagsResponse{}).
		SetError(&APIError{}).
		Get(tagsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to backend: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	result, ok := resp.Result().(*TagsResponse)
	if !ok || result == nil {
		return nil, fmt.Errorf("failed to parse backend response")
	}

	models := make([]llmdesk.ModelInfo, 0, len(result.Models))
	for _, m := range result.Models {
		var details []string
		if m.Details.Family != "" {
			details = append(details, m.Details.Family)
		}
		if m.Details.ParameterSize != "" {
			details = append(details, m.Details.ParameterSize)
		}
		if m.Details.QuantizationLevel != "" {
			details = append(details, m.Details.QuantizationLevel)
		}
		models = append(models, llmdesk.ModelInfo{
			ID:          m.Name,
			Description: strings.Join(details, ", "),
		})
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})

	return models, nil
}

// apiError turns a non-2xx response into an error carrying the backend message
func apiError(resp *resty.Response) error {
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr != nil && apiErr.Message != "" {
		return fmt.Errorf("backend error (HTTP %d): %s", resp.StatusCode(), apiErr.Message)
	}
	return fmt.Errorf("backend error (HTTP %d): %s", resp.StatusCode(), truncate(resp.String()))
}

func truncate(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
