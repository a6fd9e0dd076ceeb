package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lawn-irrigation/internal/domain"
)

const maxRequestBytes = 64 * 1024

// SkillHandler answers one voice request.
type SkillHandler interface {
	Handle(ctx context.Context, env domain.RequestEnvelope) domain.ResponseEnvelope
}

type Config struct {
	Addr string
	// RateLimit is requests per minute per client; 0 disables it.
	RateLimit int
	// TrustProxy keys the rate limit on forwarding headers.
	TrustProxy bool
}

type Server struct {
	addr        string
	skill       SkillHandler
	server      *http.Server
	listener    net.Listener
	logger      *zap.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	rateLimiter *RateLimiter
}

func NewServer(cfg Config, skill SkillHandler, logger *zap.Logger) *Server {
	s := &Server{
		addr:        cfg.Addr,
		skill:       skill,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(cfg.RateLimit, time.Minute, cfg.TrustProxy),
	}
	s.mux.HandleFunc("POST /alexa", s.rateLimiter.Middleware(s.handleAlexa))
	// No rate limiting on probes and scrapes
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	return s
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func(srv *http.Server) {
		s.logger.Info("skill HTTP server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}(s.server)

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", zap.Error(err))
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.listener = nil
	s.running = false
	return nil
}

// Addr is the bound listen address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleAlexa(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(data) > maxRequestBytes {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	var env domain.RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("malformed skill request", zap.Error(err), zap.String("remote_addr", r.RemoteAddr))
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	if env.Request.Type == "" {
		http.Error(w, "missing request type", http.StatusBadRequest)
		return
	}

	resp := s.skill.Handle(r.Context(), env)

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("writing skill response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t}`, status, running)
}
