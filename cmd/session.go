package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/llmdesk/internal/bridge"
	"github.com/longkey1/llmdesk/internal/llmdesk"
	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/longkey1/llmdesk/internal/llmdesk/session"
	"github.com/spf13/cobra"
)

var (
	bridgeAddr      string
	newSessModel    string
	newSessProfile  string
	newSessCustom   string
	newSessHost     string
	newSessContinue bool
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Drive the session of a running 'llmdesk serve'",
	Long: `Send requests to a running 'llmdesk serve' instance.

These commands act on the host's single session exactly as a UI would.
Replies are delivered to the attached UI; use 'session show' to read the history.`,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session and its history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newBridgeClient()
		if err != nil {
			return err
		}
		resp, err := client.Current(context.Background())
		if err != nil {
			return err
		}
		if resp.Data == nil || resp.Data.SessionID == "" {
			fmt.Println("No active session.")
			fmt.Println("\nStart one with:")
			fmt.Println("  llmdesk session new")
			return nil
		}

		fmt.Printf("Session: %s\n", resp.Data.SessionID)
		fmt.Printf("Messages: %d\n", len(resp.Data.History))
		fmt.Println()
		fmt.Println("Message History:")
		fmt.Println("----------------")
		for i, msg := range resp.Data.History {
			fmt.Printf("\n[%d] %s (%s):\n%s\n",
				i+1,
				roleLabel(msg),
				msg.Timestamp.Format("2006-01-02 15:04:05"),
				messageText(msg),
			)
		}
		return nil
	},
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Initialize a session (or start a new conversation with --continue)",
	Long: `Initialize the host's session with a profile's system prompt.

With --continue the current model and backend are kept and only the
conversation is reset, without a system prompt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newBridgeClient()
		if err != nil {
			return err
		}

		var resp session.Response
		if newSessContinue {
			resp, err = client.StartNew(context.Background())
		} else {
			// Unset fields fall back to the host's defaults
			resp, err = client.Initialize(context.Background(), session.InitOptions{
				BackendTarget: newSessHost,
				Model:         newSessModel,
				CustomPrompt:  newSessCustom,
				Profile:       newSessProfile,
			})
		}
		if err := responseError(resp, err); err != nil {
			return err
		}
		fmt.Printf("Session started: %s\n", resp.SessionID)
		return nil
	},
}

var sessionCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newBridgeClient()
		if err != nil {
			return err
		}
		resp, err := client.Close(context.Background())
		if err := responseError(resp, err); err != nil {
			return err
		}
		fmt.Println("Session closed.")
		return nil
	},
}

var sessionSendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a text turn",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newBridgeClient()
		if err != nil {
			return err
		}
		resp, err := client.SendText(context.Background(), strings.Join(args, " "))
		if err := responseError(resp, err); err != nil {
			return err
		}
		return printLastReply(client)
	},
}

var sessionImageCmd = &cobra.Command{
	Use:   "image <path>",
	Short: "Send an image turn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encoded, err := llmdesk.LoadImage(args[0])
		if err != nil {
			return err
		}
		client, err := newBridgeClient()
		if err != nil {
			return err
		}
		resp, err := client.SendImage(context.Background(), encoded)
		if err := responseError(resp, err); err != nil {
			return err
		}
		return printLastReply(client)
	},
}

var sessionQuitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Ask the host to shut down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newBridgeClient()
		if err != nil {
			return err
		}
		resp, err := client.Quit(context.Background())
		return responseError(resp, err)
	},
}

func newBridgeClient() (*bridge.Client, error) {
	addr := bridgeAddr
	if addr == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		addr = cfg.ListenAddr
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Bridge address: %s\n", addr)
	}
	return bridge.NewClient(addr), nil
}

// responseError merges transport and operation failures
func responseError(resp session.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	return nil
}

// printLastReply prints the assistant message that ends the history
func printLastReply(client *bridge.Client) error {
	current, err := client.Current(context.Background())
	if err := responseError(current, err); err != nil {
		return err
	}
	if current.Data == nil || len(current.Data.History) == 0 {
		return nil
	}
	last := current.Data.History[len(current.Data.History)-1]
	if last.Role == llmdesk.RoleAssistant {
		fmt.Println(last.Content)
	}
	return nil
}

func roleLabel(msg llmdesk.Message) string {
	switch msg.Role {
	case llmdesk.RoleSystem:
		return "System"
	case llmdesk.RoleAssistant:
		return "Assistant"
	default:
		return "You"
	}
}

func messageText(msg llmdesk.Message) string {
	if msg.Content == "" && len(msg.Images) > 0 {
		return session.ImageSentinel
	}
	return msg.Content
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionCloseCmd)
	sessionCmd.AddCommand(sessionSendCmd)
	sessionCmd.AddCommand(sessionImageCmd)
	sessionCmd.AddCommand(sessionQuitCmd)

	sessionCmd.PersistentFlags().StringVar(&bridgeAddr, "addr", "", "Address of the running host (default from listen_addr)")

	sessionNewCmd.Flags().StringVarP(&newSessModel, "model", "m", "", "Model to use (default from the host's config)")
	sessionNewCmd.Flags().StringVarP(&newSessProfile, "profile", "p", "", "Prompt profile (default interview)")
	sessionNewCmd.Flags().StringVar(&newSessCustom, "custom-prompt", "", "Additional user-provided context for the system prompt")
	sessionNewCmd.Flags().StringVar(&newSessHost, "host", "", "Ollama server address (default from the host's config)")
	sessionNewCmd.Flags().BoolVar(&newSessContinue, "continue", false, "Keep model and backend, reset the conversation only")
}
