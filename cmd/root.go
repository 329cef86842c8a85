/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "llmdesk",
	Short: "A desktop assistant host backed by a local Ollama server",
	Long: `llmdesk hosts a single conversation session with a local Ollama inference server.
A UI attaches to 'llmdesk serve' over HTTP and a websocket, or you can talk to the
model directly from the terminal with 'llmdesk chat'.
You can configure the tool using a TOML configuration file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/llmdesk/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("LLMDESK")
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "llmdesk")

	// Later directories in the array take precedence over earlier ones
	defaultPromptDirs := []string{
		"/usr/share/llmdesk/prompts",
		"/usr/local/share/llmdesk/prompts",
		filepath.Join(userConfigDir, "prompts"),
	}
	defaultConfig := config.NewDefaultConfig(filepath.Join(userConfigDir, "prompts"))

	viper.SetDefault("ollama_host", defaultConfig.OllamaHost)
	viper.SetDefault("model", defaultConfig.Model)
	viper.SetDefault("profile", defaultConfig.Profile)
	viper.SetDefault("custom_prompt", defaultConfig.CustomPrompt)
	viper.SetDefault("web_search", defaultConfig.WebSearch)
	viper.SetDefault("prompt_dirs", defaultPromptDirs)
	viper.SetDefault("listen_addr", defaultConfig.ListenAddr)
	viper.SetDefault("log_level", defaultConfig.LogLevel)
	viper.SetDefault("log_development", defaultConfig.LogDevelopment)

	viper.BindEnv("ollama_host", "LLMDESK_OLLAMA_HOST")
	viper.BindEnv("listen_addr", "LLMDESK_LISTEN_ADDR")
	viper.BindEnv("log_level", "LLMDESK_LOG_LEVEL")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		for _, path := range []string{"/etc/llmdesk", "/usr/local/etc/llmdesk"} {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		systemConfigLoaded := false
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// User config is merged on top of the system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  LLMDESK_OLLAMA_HOST:", viper.GetString("ollama_host"))
		fmt.Fprintln(os.Stderr, "  LLMDESK_MODEL:", viper.GetString("model"))
		fmt.Fprintln(os.Stderr, "  LLMDESK_PROFILE:", viper.GetString("profile"))
		fmt.Fprintln(os.Stderr, "  LLMDESK_PROMPT_DIRS:", viper.GetStringSlice("prompt_dirs"))
		fmt.Fprintln(os.Stderr, "  LLMDESK_LISTEN_ADDR:", viper.GetString("listen_addr"))
	}
}
