package bridge

import (
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/longkey1/llmdesk/internal/notify"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isLocalOrigin(origin)
	},
}

// isLocalOrigin reports whether a browser origin is served from this machine.
func isLocalOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// wsSurface delivers events to one websocket connection.
type wsSurface struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSurface) Send(event notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(event)
}

// handleEvents attaches the connection as the UI surface until it closes.
func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	surface := &wsSurface{conn: conn}
	s.hub.Attach(surface)
	s.metrics.SetSurfaceAttached(true)
	s.logger.Info("ui surface attached", zap.String("remote", c.Request.RemoteAddr))

	defer func() {
		s.hub.Detach(surface)
		s.metrics.SetSurfaceAttached(s.hub.Attached())
		s.logger.Info("ui surface detached", zap.String("remote", c.Request.RemoteAddr))
	}()

	// Inbound frames are ignored; reading drives ping/pong and close handling.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
