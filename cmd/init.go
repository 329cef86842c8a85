package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/longkey1/llmdesk/internal/llmdesk/prompt"
	"github.com/spf13/cobra"
)

const exampleProfileName = "example.toml"

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration file",
	Long: `Initialize the configuration file with default settings.
The config file will be created at $HOME/.config/llmdesk/config.toml by default.
You can specify a different location using the --config option.

A prompts directory is created next to the config file together with an
example profile showing the profile file format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		configFile := filepath.Join(home, ".config", "llmdesk", "config.toml")
		if cfgFile != "" {
			configFile = cfgFile
		}

		configDir := filepath.Dir(configFile)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("config file already exists at: %s", configFile)
		}

		promptsDir := filepath.Join(configDir, "prompts")
		cfg := config.NewDefaultConfig(promptsDir)
		if err := writeTOML(configFile, cfg); err != nil {
			return err
		}

		if err := os.MkdirAll(promptsDir, 0755); err != nil {
			return fmt.Errorf("failed to create prompts directory: %w", err)
		}

		examplePath := filepath.Join(promptsDir, exampleProfileName)
		if _, err := os.Stat(examplePath); os.IsNotExist(err) {
			example := prompt.Profile{
				Description: "Example profile, copy and edit to create your own",
				Intro:       "You are a concise assistant helping the user during a live conversation.",
				Content:     "Answer the question that was just asked. Prefer short, concrete answers.",
				Output:      "Respond in plain text without headings.",
			}
			if err := writeTOML(examplePath, example); err != nil {
				return err
			}
		}

		fmt.Printf("Configuration file created at: %s\n", configFile)
		fmt.Printf("Prompts directory created at: %s\n", promptsDir)
		fmt.Printf("Example profile: %s (use with --profile example)\n", examplePath)
		return nil
	},
}

func writeTOML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
