package cmd

import (
	"fmt"

	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/longkey1/llmdesk/internal/llmdesk/prompt"
	"github.com/longkey1/llmdesk/internal/llmdesk/session"
	"github.com/longkey1/llmdesk/internal/logging"
	"github.com/longkey1/llmdesk/internal/metrics"
	"github.com/longkey1/llmdesk/internal/notify"
	"github.com/longkey1/llmdesk/internal/ollama"
	"go.uber.org/zap"
)

// newLogger creates the process logger from the configuration.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
		Verbose:     verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// newClient creates an Ollama client bound to the configured default target
func newClient(cfg *config.Config) (*ollama.Client, error) {
	target, err := cfg.GetBackendTarget()
	if err != nil {
		return nil, fmt.Errorf("invalid ollama_host: %w", err)
	}
	client := ollama.NewClient(target)
	client.SetDebug(verbose)
	return client, nil
}

// newService wires the session service: ollama client, prompt builder, manager.
func newService(cfg *config.Config, sink notify.Sink, logger *zap.Logger, m *metrics.Metrics) (*session.Service, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(client, prompt.NewBuilder(cfg.PromptDirs), session.Options{
		DefaultTarget: client.Target(),
		DefaultModel:  cfg.GetModel(),
		WebSearch:     cfg.WebSearch,
	})
	return session.NewService(manager, sink, logger, m), nil
}

// defaultInitOptions returns initialize-session options taken from the configuration
func defaultInitOptions(cfg *config.Config) session.InitOptions {
	return session.InitOptions{
		Model:        cfg.GetModel(),
		CustomPrompt: cfg.CustomPrompt,
		Profile:      cfg.GetProfile(),
	}
}
