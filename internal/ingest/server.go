// Package ingest is the HTTP surface remote producers emit toasts through.
//
// Handlers never emit themselves. They hand an Emission to a Sender, which
// in the TUI is the tea.Program, so every emission runs on the UI loop.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/tuanbt/toastlog/internal/auth"
	"github.com/tuanbt/toastlog/internal/metrics"
	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/spool"
	"github.com/tuanbt/toastlog/internal/toast"
)

// Routes.
const (
	RouteToken         = "/api/token"
	RouteNotifications = "/api/notifications"
	RouteMetrics       = "/metrics"
)

// maxBody caps request bodies.
const maxBody = 64 << 10

// Emission asks the UI loop to emit one toast.
type Emission struct {
	Kind     toast.Kind
	Message  any
	Options  []toast.Option
	Producer string
}

// Sender delivers an Emission to the UI loop. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// RecordSource is the read side of the notification log.
type RecordSource interface {
	Since(seq uint64) []notify.Record
	LastSeq() uint64
}

// HistoryResponse is the body of GET /api/notifications.
type HistoryResponse struct {
	Records []notify.Record `json:"records"`
	LastSeq uint64          `json:"last_seq"`
}

// AcceptedResponse is the body of a successful POST /api/notifications.
type AcceptedResponse struct {
	Kind     toast.Kind `json:"kind"`
	Producer string     `json:"producer"`
}

// Config controls the server.
type Config struct {
	Address       string
	RatePerSecond float64
	Burst         int
}

// Server serves the ingest API.
type Server struct {
	cfg     Config
	auth    *auth.Handler
	sender  Sender
	records RecordSource
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics counts requests and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a server. authService checks bearer tokens and key
// exchanges.
func NewServer(cfg Config, authService *auth.AuthService, sender Sender, records RecordSource, opts ...Option) *Server {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	s := &Server{
		cfg:      cfg,
		auth:     auth.NewHandler(authService),
		sender:   sender,
		records:  records,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "ingest")
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(RouteToken, s.instrument(RouteToken, s.auth.Token))
	mux.HandleFunc(RouteNotifications, s.instrument(RouteNotifications, s.auth.AuthMiddleware(s.notifications)))
	if s.metrics != nil {
		mux.Handle(RouteMetrics, s.metrics.Handler())
	}
	return mux
}

// Start listens on the configured address and serves until ctx is done.
// It returns once the listener is bound; serve errors are logged.
func (s *Server) Start(ctx context.Context) (net.Addr, error) {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error shutting down HTTP server", "error", err)
		}
	}()

	s.logger.Info("ingest listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	producer, _ := auth.ProducerFromContext(r.Context())

	switch r.Method {
	case http.MethodPost:
		s.emit(w, r, producer)
	case http.MethodGet:
		s.history(w, r)
	default:
		auth.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) emit(w http.ResponseWriter, r *http.Request, producer string) {
	if !s.limiter(producer).Allow() {
		s.logger.Warn("producer rate limited", "producer", producer)
		auth.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	}

	var req spool.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		auth.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind, err := req.ParsedKind()
	if err != nil {
		auth.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.sender.Send(Emission{
		Kind:     kind,
		Message:  req.Message,
		Options:  req.Options(),
		Producer: producer,
	})
	s.logger.Debug("emission accepted", "producer", producer, "kind", kind)

	auth.RespondWithJSON(w, http.StatusAccepted, AcceptedResponse{Kind: kind, Producer: producer})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			auth.RespondWithError(w, http.StatusBadRequest, "Invalid since parameter")
			return
		}
		since = parsed
	}

	auth.RespondWithJSON(w, http.StatusOK, HistoryResponse{
		Records: s.records.Since(since),
		LastSeq: s.records.LastSeq(),
	})
}

// limiter returns the token bucket for producer, creating it on first use.
func (s *Server) limiter(producer string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[producer]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.cfg.RatePerSecond), s.cfg.Burst)
		s.limiters[producer] = l
	}
	return l
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		if s.metrics != nil {
			s.metrics.RecordIngestRequest(route, rec.code)
		}
	}
}
