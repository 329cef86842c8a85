/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/llmdesk/internal/llmdesk"
	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/spf13/cobra"
)

var modelsHost string

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models installed on the Ollama server",
	Long: `List the models installed on the Ollama server.
Fetches the model list directly from the server's /api/tags endpoint.

Example:
  llmdesk models                              # Models on the configured server
  llmdesk models --host http://gpu-box:11434  # Models on another server`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		if modelsHost != "" {
			client.Configure(modelsHost)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Listing models on: %s\n", client.Target())
		}

		models, err := client.ListModels(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		if len(models) == 0 {
			fmt.Printf("No models installed on %s.\n", client.Target())
			fmt.Println("Pull one with: ollama pull llama3")
			return nil
		}

		fmt.Printf("Available models on %s:\n\n", client.Target())

		maxModelWidth := 15
		for _, model := range models {
			if len(model.ID) > maxModelWidth {
				maxModelWidth = len(model.ID)
			}
		}

		fmt.Printf("%-*s  %-10s  %s\n", maxModelWidth, "MODEL", "DEFAULT", "DESCRIPTION")
		fmt.Printf("%s  %s  %s\n",
			strings.Repeat("-", maxModelWidth),
			strings.Repeat("-", 10),
			strings.Repeat("-", 40))

		llmdesk.MarkDefault(models, cfg.GetModel())
		for _, model := range models {
			defaultMark := ""
			if model.IsDefault {
				defaultMark = "Yes"
			}
			fmt.Printf("%-*s  %-10s  %s\n", maxModelWidth, model.ID, defaultMark, model.Description)
		}

		fmt.Printf("\nUse a model with: llmdesk chat --model <model> [message]\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringVar(&modelsHost, "host", "", "Ollama server address (default from config)")
}
