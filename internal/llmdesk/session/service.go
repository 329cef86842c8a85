package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/longkey1/llmdesk/internal/metrics"
	"github.com/longkey1/llmdesk/internal/notify"
	"go.uber.org/zap"
)

// Response is the structured result returned to the surrounding process.
// Errors never escape a Service operation; they are reported here.
type Response struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Data      *Snapshot `json:"data,omitempty"`
}

// Service is the top-level holder the host owns. It drives the Manager and
// forwards the produced events to the sink. Turns and session lifecycle
// changes are serialized, so a pending turn always commits into the session
// it was built against.
type Service struct {
	manager *Manager
	sink    notify.Sink
	logger  *zap.Logger
	metrics *metrics.Metrics

	turnMu sync.Mutex
}

// NewService wires a manager to its sink. logger and m may be nil.
func NewService(manager *Manager, sink notify.Sink, logger *zap.Logger, m *metrics.Metrics) *Service {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		manager: manager,
		sink:    sink,
		logger:  logger,
		metrics: m,
	}
}

// Manager returns the underlying manager.
func (s *Service) Manager() *Manager {
	return s.manager
}

// InitializeSession handles initialize-session.
func (s *Service) InitializeSession(opts InitOptions) Response {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	events, err := s.manager.Initialize(opts)
	if err != nil {
		s.logger.Error("failed to initialize session", zap.String("profile", opts.Profile), zap.Error(err))
		s.metrics.RecordInitFailure()
		return failure(err)
	}

	snap := s.manager.Current()
	target, model := s.manager.Binding()
	s.logger.Info("session initialized",
		zap.String("session_id", snap.SessionID),
		zap.String("model", model),
		zap.String("backend", target),
	)
	s.metrics.RecordSessionStart("initialize")
	notify.Forward(s.sink, events)
	return Response{Success: true, SessionID: snap.SessionID}
}

// SendText handles send-text.
func (s *Service) SendText(ctx context.Context, text string) Response {
	return s.sendTurn(ctx, metrics.KindText, func(ctx context.Context) (Result, error) {
		return s.manager.SubmitText(ctx, text)
	})
}

// SendImage handles send-image.
func (s *Service) SendImage(ctx context.Context, data string) Response {
	return s.sendTurn(ctx, metrics.KindImage, func(ctx context.Context) (Result, error) {
		return s.manager.SubmitImage(ctx, data)
	})
}

func (s *Service) sendTurn(ctx context.Context, kind string, submit func(context.Context) (Result, error)) Response {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	start := time.Now()
	result, err := submit(ctx)
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Error("turn failed", zap.String("kind", kind), zap.Duration("elapsed", elapsed), zap.Error(err))
		s.metrics.RecordTurn(kind, metrics.OutcomeBackendErr, elapsed)
		return failure(err)
	}

	if result.Lazy {
		s.logger.Warn("turn submitted without an initialized session, created one implicitly",
			zap.String("session_id", result.SessionID))
		s.metrics.RecordSessionStart("lazy")
	}
	s.logger.Info("saved conversation turn",
		zap.String("session_id", result.SessionID),
		zap.String("kind", kind),
		zap.Int("history_len", result.HistoryLen),
		zap.Duration("elapsed", elapsed),
	)
	s.metrics.RecordTurn(kind, metrics.OutcomeSuccess, elapsed)
	notify.Forward(s.sink, result.Events)
	return Response{Success: true, SessionID: result.SessionID}
}

// SendAudio handles send-audio, which the backend cannot serve.
func (s *Service) SendAudio() Response {
	s.metrics.RecordTurn(metrics.KindAudio, metrics.OutcomeUnsupported, 0)
	return failure(ErrUnsupported)
}

// CloseSession handles close-session.
func (s *Service) CloseSession() Response {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.manager.Close()
	s.logger.Info("session closed")
	return Response{Success: true}
}

// GetCurrentSession handles get-current-session.
func (s *Service) GetCurrentSession() Response {
	snap := s.manager.Current()
	return Response{Success: true, Data: &snap}
}

// StartNewSession handles start-new-session.
func (s *Service) StartNewSession() Response {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	id := s.manager.StartNew()
	s.logger.Info("new conversation session started", zap.String("session_id", id))
	s.metrics.RecordSessionStart("new")
	return Response{Success: true, SessionID: id}
}

// failure reports the innermost backend message for backend errors so the UI
// sees what the server said rather than our wrapping.
func failure(err error) Response {
	msg := err.Error()
	if errors.Is(err, ErrBackend) {
		if wrapped, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range wrapped.Unwrap() {
				if !errors.Is(e, ErrBackend) {
					msg = e.Error()
				}
			}
		}
	}
	return Response{Success: false, Error: msg}
}
