package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/longkey1/llmdesk/internal/llmdesk/session"
)

// Client talks to a running bridge server.
type Client struct {
	resty *resty.Client
}

// NewClient creates a client for the bridge at addr ("host:port" or a URL).
func NewClient(addr string) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		resty: resty.New().
			SetBaseURL(strings.TrimRight(addr, "/")).
			SetHeader("Content-Type", "application/json"),
	}
}

// Initialize calls initialize-session.
func (c *Client) Initialize(ctx context.Context, opts session.InitOptions) (session.Response, error) {
	return c.post(ctx, "/api/session/initialize", opts)
}

// SendText calls send-text.
func (c *Client) SendText(ctx context.Context, text string) (session.Response, error) {
	return c.post(ctx, "/api/session/text", TextRequest{Text: text})
}

// SendImage calls send-image with a base64 payload.
func (c *Client) SendImage(ctx context.Context, data string) (session.Response, error) {
	return c.post(ctx, "/api/session/image", ImageRequest{Data: data})
}

// SendAudio calls send-audio.
func (c *Client) SendAudio(ctx context.Context) (session.Response, error) {
	return c.post(ctx, "/api/session/audio", nil)
}

// Close calls close-session.
func (c *Client) Close(ctx context.Context) (session.Response, error) {
	return c.post(ctx, "/api/session/close", nil)
}

// StartNew calls start-new-session.
func (c *Client) StartNew(ctx context.Context) (session.Response, error) {
	return c.post(ctx, "/api/session/new", nil)
}

// Quit asks the server to shut down.
func (c *Client) Quit(ctx context.Context) (session.Response, error) {
	return c.post(ctx, "/api/quit", nil)
}

// Current calls get-current-session.
func (c *Client) Current(ctx context.Context) (session.Response, error) {
	var out session.Response
	resp, err := c.resty.R().SetContext(ctx).SetResult(&out).SetError(&out).Get("/api/session")
	return out, check(resp, err)
}

func (c *Client) post(ctx context.Context, path string, body any) (session.Response, error) {
	var out session.Response
	req := c.resty.R().SetContext(ctx).SetResult(&out).SetError(&out)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(path)
	return out, check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("bridge returned HTTP %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
