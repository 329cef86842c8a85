package config

import (
	"fmt"

	"github.com/longkey1/llmdesk/internal/llmdesk"
	"github.com/spf13/viper"
)

// Config holds the configuration for the assistant host
type Config struct {
	OllamaHost     string   `toml:"ollama_host" mapstructure:"ollama_host"` // Default backend target, "$OLLAMA_HOST" allowed
	Model          string   `toml:"model" mapstructure:"model"`
	Profile        string   `toml:"profile" mapstructure:"profile"`
	CustomPrompt   string   `toml:"custom_prompt" mapstructure:"custom_prompt"`
	WebSearch      bool     `toml:"web_search" mapstructure:"web_search"`
	PromptDirs     []string `toml:"prompt_dirs" mapstructure:"prompt_dirs"`
	ListenAddr     string   `toml:"listen_addr" mapstructure:"listen_addr"`
	LogLevel       string   `toml:"log_level" mapstructure:"log_level"`
	LogDevelopment bool     `toml:"log_development" mapstructure:"log_development"`
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(promptDir string) *Config {
	return &Config{
		OllamaHost:     "$OLLAMA_HOST", // Default to env var, falls back to DefaultBackendTarget
		Model:          llmdesk.DefaultModel,
		Profile:        llmdesk.DefaultProfile,
		CustomPrompt:   "",
		WebSearch:      false,
		PromptDirs:     []string{promptDir},
		ListenAddr:     "127.0.0.1:8765",
		LogLevel:       "info",
		LogDevelopment: false,
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	// The default backend target is resolved once here and never re-read from the environment
	host, err := expandEnvVar(config.OllamaHost)
	if err != nil {
		return nil, fmt.Errorf("error expanding ollama_host: %v", err)
	}
	config.OllamaHost = host

	// Convert prompt directories to absolute paths
	for i, promptDir := range config.PromptDirs {
		absPath, err := ResolvePath(promptDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving prompt directory path '%s': %v", promptDir, err)
		}
		config.PromptDirs[i] = absPath
	}

	return config, nil
}

// GetBackendTarget returns the normalized default backend target.
// An empty ollama_host falls back to llmdesk.DefaultBackendTarget.
func (c *Config) GetBackendTarget() (string, error) {
	if c.OllamaHost == "" {
		return llmdesk.DefaultBackendTarget, nil
	}
	return llmdesk.NormalizeBackendTarget(c.OllamaHost)
}

// GetModel returns the model name, falling back to the default model
func (c *Config) GetModel() string {
	if c.Model == "" {
		return llmdesk.DefaultModel
	}
	return c.Model
}

// GetProfile returns the prompt profile, falling back to the default profile
func (c *Config) GetProfile() string {
	if c.Profile == "" {
		return llmdesk.DefaultProfile
	}
	return c.Profile
}
