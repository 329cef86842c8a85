package cmd

import (
	"fmt"
	"strings"

	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, ollama_host, model, profile, custom_prompt, promptdirs, websearch, listen_addr, log_level, log_development"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  llmdesk config               # Show all configuration
  llmdesk config model         # Show only model
  llmdesk config ollama_host   # Show only the resolved Ollama server address
  llmdesk config promptdirs    # Show only prompt directories`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		host, err := cfg.GetBackendTarget()
		if err != nil {
			host = fmt.Sprintf("%s (invalid: %v)", cfg.OllamaHost, err)
		}

		if len(args) > 0 {
			field := strings.ToLower(args[0])
			switch field {
			case "configfile":
				fmt.Println(viper.ConfigFileUsed())
			case "ollama_host", "ollamahost", "host":
				fmt.Println(host)
			case "model":
				fmt.Println(cfg.GetModel())
			case "profile":
				fmt.Println(cfg.GetProfile())
			case "custom_prompt", "customprompt":
				fmt.Println(cfg.CustomPrompt)
			case "promptdirs", "prompt_dirs":
				// PromptDirs are already absolute paths
				fmt.Println(strings.Join(cfg.PromptDirs, ","))
			case "websearch", "web_search":
				fmt.Println(cfg.WebSearch)
			case "listen_addr", "listenaddr":
				fmt.Println(cfg.ListenAddr)
			case "log_level", "loglevel":
				fmt.Println(cfg.LogLevel)
			case "log_development", "logdevelopment":
				fmt.Println(cfg.LogDevelopment)
			default:
				return fmt.Errorf("unknown field: %s\nAvailable fields: %s", args[0], configFields)
			}
			return nil
		}

		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("OllamaHost: %s\n", host)
		fmt.Printf("Model: %s\n", cfg.GetModel())
		fmt.Printf("Profile: %s\n", cfg.GetProfile())
		fmt.Printf("CustomPrompt: %s\n", cfg.CustomPrompt)
		fmt.Printf("PromptDirectories: %s\n", strings.Join(cfg.PromptDirs, ","))
		fmt.Printf("WebSearch: %v\n", cfg.WebSearch)
		fmt.Printf("ListenAddr: %s\n", cfg.ListenAddr)
		fmt.Printf("LogLevel: %s\n", cfg.LogLevel)
		fmt.Printf("LogDevelopment: %v\n", cfg.LogDevelopment)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
