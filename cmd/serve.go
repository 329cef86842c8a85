package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/longkey1/llmdesk/internal/bridge"
	"github.com/longkey1/llmdesk/internal/llmdesk/config"
	"github.com/longkey1/llmdesk/internal/metrics"
	"github.com/longkey1/llmdesk/internal/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant host",
	Long: `Run the assistant host and expose the session over local HTTP.

A UI drives the session with JSON requests under /api and receives status,
saved turns and replies over the websocket at /events. Only one UI is attached
at a time; a new connection replaces the previous one.

The session is not initialized on startup. The UI calls
POST /api/session/initialize first, or 'llmdesk session new' from another terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddr = listenAddr
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		if !cfg.LogDevelopment {
			gin.SetMode(gin.ReleaseMode)
		}

		m := metrics.New()
		hub := notify.NewHub(logger)
		svc, err := newService(cfg, hub, logger, m)
		if err != nil {
			return err
		}

		target, model := svc.Manager().Binding()
		logger.Info("starting llmdesk host",
			zap.String("backend", target),
			zap.String("model", model),
			zap.String("listen", cfg.ListenAddr),
		)

		server := bridge.NewServer(cfg.ListenAddr, svc, hub, m, logger)
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Run()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("bridge server: %w", err)
			}
			return nil
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		case <-server.Quit():
			logger.Info("quit requested by client, shutting down")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down bridge: %w", err)
		}
		logger.Info("llmdesk host stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Address to listen on (default from config, 127.0.0.1:8765)")
}
