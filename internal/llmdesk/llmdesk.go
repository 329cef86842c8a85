// Package llmdesk provides the core abstractions shared by the desktop assistant:
// conversation messages, the inference client contract and backend target helpers.
// Concrete clients (ollama, ...) implement the Client interface defined here.
package llmdesk

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBackendTarget is used when neither the caller nor OLLAMA_HOST names a backend.
	DefaultBackendTarget = "http://127.0.0.1:11434"
	// DefaultModel is bound when initialization does not name a model.
	DefaultModel = "llama3"
	// DefaultProfile selects the system prompt template when none is given.
	DefaultProfile = "interview"
)

// ModelInfo represents information about a model installed on the backend.
type ModelInfo struct {
	ID          string // Model identifier (e.g., "llama3:latest")
	Description string // Human-readable description (family, parameter size)
	IsDefault   bool   // Whether this is the configured default model
}

// Client defines the contract of an inference backend.
//
// Example usage:
//
//	client := ollama.NewClient(llmdesk.DefaultBackendTarget)
//	reply, err := client.Chat(ctx, messages, "llama3")
type Client interface {
	// Configure rebinds the client to a new backend target, replacing any prior binding.
	Configure(target string)

	// Target returns the currently bound backend target.
	Target() string

	// Chat sends the full ordered message list to the backend and returns the assistant text.
	// A single attempt is made per call.
	Chat(ctx context.Context, messages []Message, model string) (string, error)

	// ListModels returns the models installed on the backend.
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// NormalizeBackendTarget turns a host as users write it (e.g. "localhost:11434",
// "http://gpu-box:11434/") into a base URL without trailing slash.
//
// Example:
//
//	target, err := NormalizeBackendTarget("gpu-box:11434")
//	// target = "http://gpu-box:11434"
func NormalizeBackendTarget(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("backend target cannot be empty")
	}

	if !strings.Contains(target, "://") {
		target = "http://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid backend target %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid backend target %q: unsupported scheme %s", target, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid backend target %q: missing host", target)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// MarkDefault sets IsDefault on the models matching the configured model name.
// A bare name matches its ":latest" tag, as Ollama resolves it that way.
func MarkDefault(models []ModelInfo, configured string) {
	for i := range models {
		id := models[i].ID
		models[i].IsDefault = id == configured || strings.TrimSuffix(id, ":latest") == configured
	}
}
