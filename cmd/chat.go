/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/longkey1/llmdesk/internal/llmdesk"
	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/longkey1/llmdesk/internal/llmdesk/session"
	"github.com/longkey1/llmdesk/internal/notify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	chatModel        string
	chatProfile      string
	chatCustomPrompt string
	chatHost         string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the model from the terminal",
	Long: `Start an interactive conversation session in the terminal.

The session is seeded with the system prompt of the selected profile, and every
turn is sent to the Ollama server together with the whole history.

If a message is given as arguments, a single turn is sent and the reply printed.
If stdin is not a terminal, it is read as a single message.

Examples:
  llmdesk chat                                  # Interactive session with the configured profile
  llmdesk chat --profile sales                  # Use the sales profile
  llmdesk chat -m llava "What is a goroutine?"  # One-shot question`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// The terminal is the output surface, keep logs quiet unless asked
		if !verbose {
			cfg.LogLevel = "warn"
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		console := &consoleSurface{out: os.Stdout}
		hub := notify.NewHub(logger)
		hub.Attach(console)

		svc, err := newService(cfg, hub, logger, nil)
		if err != nil {
			return err
		}

		opts := defaultInitOptions(cfg)
		if cmd.Flags().Changed("model") {
			opts.Model = chatModel
		}
		if cmd.Flags().Changed("profile") {
			opts.Profile = chatProfile
		}
		if cmd.Flags().Changed("custom-prompt") {
			opts.CustomPrompt = chatCustomPrompt
		}
		opts.BackendTarget = chatHost

		if resp := svc.InitializeSession(opts); !resp.Success {
			return fmt.Errorf("initializing session: %s", resp.Error)
		}

		// One-shot mode
		message := strings.Join(args, " ")
		if message == "" && !isTerminal(os.Stdin) {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			message = strings.TrimSpace(string(input))
		}
		if message != "" {
			resp := svc.SendText(context.Background(), message)
			if !resp.Success {
				return fmt.Errorf("chat request failed: %s", resp.Error)
			}
			console.flush(false)
			return nil
		}

		console.flush(true)
		return runInteractiveMode(svc, console, logger)
	},
}

// consoleSurface prints events to the terminal. Events are held until flush
// so that output does not interleave with the spinner.
type consoleSurface struct {
	mu      sync.Mutex
	out     io.Writer
	pending []notify.Event
}

func (c *consoleSurface) Send(event notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, event)
	return nil
}

// flush prints pending events. Only the reply is printed unless decorate is set.
func (c *consoleSurface) flush(decorate bool) {
	c.mu.Lock()
	events := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, event := range events {
		switch event.Channel {
		case notify.ChannelStatus:
			if decorate {
				fmt.Fprintf(os.Stderr, "[%v]\n", event.Payload)
			}
		case notify.ChannelResponse:
			if decorate {
				fmt.Fprintf(c.out, "\nAssistant> %v\n\n", event.Payload)
			} else {
				fmt.Fprintln(c.out, event.Payload)
			}
		case notify.ChannelTurnSaved:
			if saved, ok := event.Payload.(session.TurnSaved); ok && verbose {
				fmt.Fprintf(os.Stderr, "Saved turn %d of session %s\n", len(saved.FullHistory), shortID(saved.SessionID))
			}
		}
	}
}

// runInteractiveMode reads lines until /exit or Ctrl+D
func runInteractiveMode(svc *session.Service, console *consoleSurface, logger *zap.Logger) error {
	printHeader(svc)

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".config", "llmdesk", "chat_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "/exit",
		Stdout:          os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(os.Stderr, "Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("input error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !handleSpecialCommand(input, svc, console) {
				return nil
			}
			continue
		}

		sendWithSpinner(console, func() session.Response {
			return svc.SendText(context.Background(), input)
		})
		logger.Debug("turn complete", zap.Int("history_len", len(svc.Manager().Current().History)))
	}
}

// sendWithSpinner runs send while the spinner is shown, then prints the result
func sendWithSpinner(console *consoleSurface, send func() session.Response) {
	done := make(chan bool)
	go showSpinner(done)
	resp := send()
	done <- true
	close(done)

	if !resp.Success {
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Error)
		return
	}
	console.flush(true)
}

// showSpinner displays a spinner animation while waiting for response
func showSpinner(done chan bool) {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			fmt.Fprint(os.Stderr, "\r\033[K")
			return
		default:
			fmt.Fprintf(os.Stderr, "\r%s Waiting for response...", spinners[i])
			i = (i + 1) % len(spinners)
			time.Sleep(80 * time.Millisecond)
		}
	}
}

func printHeader(svc *session.Service) {
	target, model := svc.Manager().Binding()
	fmt.Fprintf(os.Stderr, "\n=== Interactive Session [%s] ===\n", shortID(svc.Manager().Current().SessionID))
	fmt.Fprintf(os.Stderr, "Model: %s\n", model)
	fmt.Fprintf(os.Stderr, "Backend: %s\n", target)
	fmt.Fprintf(os.Stderr, "Type '/help' for commands, '/exit' or 'Ctrl+D' to quit\n")
	fmt.Fprintf(os.Stderr, "===================================\n\n")
}

// handleSpecialCommand processes slash commands.
// Returns true to continue the loop, false to exit
func handleSpecialCommand(input string, svc *session.Service, console *consoleSurface) bool {
	command, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	command = strings.ToLower(command)
	arg = strings.TrimSpace(arg)

	switch command {
	case "/help", "/h":
		fmt.Fprintln(os.Stderr, "\nAvailable commands:")
		fmt.Fprintln(os.Stderr, "  /help, /h        - Show this help message")
		fmt.Fprintln(os.Stderr, "  /info, /i        - Show session information")
		fmt.Fprintln(os.Stderr, "  /new, /n         - Start a new conversation with the same model")
		fmt.Fprintln(os.Stderr, "  /image <path>    - Send an image file")
		fmt.Fprintln(os.Stderr, "  /audio           - Send audio (not supported by Ollama)")
		fmt.Fprintln(os.Stderr, "  /close           - Close the session")
		fmt.Fprintln(os.Stderr, "  /exit, /quit     - Exit interactive mode")
		fmt.Fprintln(os.Stderr, "  Ctrl+D           - Exit interactive mode")
		fmt.Fprintln(os.Stderr, "")
		return true

	case "/info", "/i":
		printSessionInfo(svc)
		return true

	case "/new", "/n":
		resp := svc.StartNewSession()
		fmt.Fprintf(os.Stderr, "Started new session: %s\n", shortID(resp.SessionID))
		return true

	case "/image":
		if arg == "" {
			fmt.Fprintln(os.Stderr, "Usage: /image <path>")
			return true
		}
		encoded, err := llmdesk.LoadImage(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return true
		}
		sendWithSpinner(console, func() session.Response {
			return svc.SendImage(context.Background(), encoded)
		})
		return true

	case "/audio":
		resp := svc.SendAudio()
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Error)
		return true

	case "/close":
		svc.CloseSession()
		fmt.Fprintln(os.Stderr, "Session closed. The next message starts a new one.")
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(os.Stderr, "Goodbye!")
		return false

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s (type '/help' for available commands)\n", command)
		return true
	}
}

func printSessionInfo(svc *session.Service) {
	sess := svc.Manager().Info()
	if sess == nil {
		fmt.Fprintln(os.Stderr, "\nNo active session.")
		fmt.Fprintln(os.Stderr, "")
		return
	}
	target, model := svc.Manager().Binding()
	fmt.Fprintln(os.Stderr, "\nSession Information:")
	fmt.Fprintf(os.Stderr, "  ID: %s\n", sess.GetShortID())
	fmt.Fprintf(os.Stderr, "  Full ID: %s\n", sess.ID)
	fmt.Fprintf(os.Stderr, "  Model: %s\n", model)
	fmt.Fprintf(os.Stderr, "  Backend: %s\n", target)
	fmt.Fprintf(os.Stderr, "  Messages: %d\n", sess.MessageCount())
	fmt.Fprintf(os.Stderr, "  Turns: %d\n", len(sess.Turns()))
	fmt.Fprintf(os.Stderr, "  Created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(os.Stderr, "")
}

// shortID returns the first 8 characters of a session id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Model to use (default from config)")
	chatCmd.Flags().StringVarP(&chatProfile, "profile", "p", "", "Prompt profile (default from config)")
	chatCmd.Flags().StringVar(&chatCustomPrompt, "custom-prompt", "", "Additional user-provided context for the system prompt")
	chatCmd.Flags().StringVar(&chatHost, "host", "", "Ollama server address (default from config)")
}
