/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/longkey1/llmdesk/internal/llmdesk/prompt"
	"github.com/spf13/cobra"
)

var withDir bool

// profilesCmd represents the profiles command
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List available prompt profiles",
	Long: `List the built-in prompt profiles and the .toml profile files found in the
configured prompt directories, including subdirectories.

A profile file overrides the built-in profile of the same name. Later prompt
directories take precedence over earlier ones.

The profile files should be in TOML format with the following structure:
description = "One line shown by this command"
intro = "Who the assistant is"
format = "How answers are formatted"
search = "When to use web search (only used with web_search = true)"
content = "Profile specific instructions"
output = "Final output instructions"

Profile names are displayed as relative paths from the prompt directory root.
For example, a file at ${prompt_dir}/team/retro.toml is shown as "team/retro".

If you want to see which directory each profile comes from, use the --with-dir option.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Prompt directories: %v\n", cfg.PromptDirs)
		}

		entries, err := prompt.NewBuilder(cfg.PromptDirs).List()
		if err != nil {
			return fmt.Errorf("listing profiles: %w", err)
		}

		fmt.Printf("Available profiles (%d found):\n\n", len(entries))
		for _, entry := range entries {
			line := "  " + entry.Name
			if entry.Description != "" {
				line += " - " + entry.Description
			}
			if withDir {
				if entry.Dir == "" {
					line += " (built-in)"
				} else {
					line += fmt.Sprintf(" (from %s)", entry.Dir)
				}
			}
			fmt.Println(line)
		}

		fmt.Printf("\nUse a profile with: llmdesk chat --profile <name>\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.Flags().BoolVar(&withDir, "with-dir", false, "Show the directory each profile was found in")
}
