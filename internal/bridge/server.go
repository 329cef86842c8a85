// Package bridge exposes the session Service to a UI over local HTTP.
// Request/response operations are JSON endpoints under /api; outbound
// notifications flow over a websocket at /events, whose connection becomes
// the attached UI surface.
package bridge

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/longkey1/llmdesk/internal/llmdesk/session"
	"github.com/longkey1/llmdesk/internal/metrics"
	"github.com/longkey1/llmdesk/internal/notify"
	"go.uber.org/zap"
)

// TextRequest is the body of send-text.
type TextRequest struct {
	Text string `json:"text"`
}

// ImageRequest is the body of send-image.
type ImageRequest struct {
	Data string `json:"data"`
}

// Server hosts the bridge endpoints.
type Server struct {
	service *session.Service
	hub     *notify.Hub
	metrics *metrics.Metrics
	logger  *zap.Logger

	engine   *gin.Engine
	http     *http.Server
	quit     chan struct{}
	quitOnce sync.Once
}

// NewServer builds the router. m may be nil, in which case /metrics is not served.
func NewServer(addr string, service *session.Service, hub *notify.Hub, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), localCORS())

	s := &Server{
		service: service,
		hub:     hub,
		metrics: m,
		logger:  logger,
		engine:  engine,
		quit:    make(chan struct{}),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.POST("/session/initialize", s.handleInitialize)
		api.POST("/session/text", s.handleText)
		api.POST("/session/image", s.handleImage)
		api.POST("/session/audio", s.handleAudio)
		api.POST("/session/close", s.handleClose)
		api.GET("/session", s.handleCurrent)
		api.POST("/session/new", s.handleNew)
		api.POST("/quit", s.handleQuit)
	}

	s.engine.GET("/events", s.handleEvents)
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ui_attached": s.hub.Attached()})
	})
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("bridge listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Quit is closed when a client requests quit-application.
func (s *Server) Quit() <-chan struct{} {
	return s.quit
}

func (s *Server) handleInitialize(c *gin.Context) {
	var opts session.InitOptions
	if !bindOptional(c, &opts) {
		return
	}
	c.JSON(http.StatusOK, s.service.InitializeSession(opts))
}

func (s *Server) handleText(c *gin.Context) {
	var req TextRequest
	if !bindOptional(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.service.SendText(backendContext(c), req.Text))
}

func (s *Server) handleImage(c *gin.Context) {
	var req ImageRequest
	if !bindOptional(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.service.SendImage(backendContext(c), req.Data))
}

func (s *Server) handleAudio(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.SendAudio())
}

func (s *Server) handleClose(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.CloseSession())
}

func (s *Server) handleCurrent(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.GetCurrentSession())
}

func (s *Server) handleNew(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.StartNewSession())
}

func (s *Server) handleQuit(c *gin.Context) {
	s.quitOnce.Do(func() {
		s.logger.Info("quit requested")
		close(s.quit)
	})
	c.JSON(http.StatusOK, session.Response{Success: true})
}

// backendContext keeps request values but not cancellation: once dispatched,
// a backend call runs to completion even if the caller goes away.
func backendContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// bindOptional decodes a JSON body when one is present.
func bindOptional(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, session.Response{Success: false, Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// localCORS lets UIs served from a local dev server call the API.
func localCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: isLocalOrigin,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Accept", "Origin"},
		MaxAge:          12 * time.Hour,
	})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
