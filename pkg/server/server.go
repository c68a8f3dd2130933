package server

import (
	"context"
	"net/http"
	"sync"

	"goldbox-rpg/pkg/config"
)

// Server is the battle engine's control surface: see doc.go for the
// overview. It owns every in-flight BattleSession and PlayerSession and
// assembles the HTTP route table from the handlers in handlers.go and
// websocket.go.
type Server struct {
	config *config.Config

	mu       sync.RWMutex
	battles  map[string]*BattleSession
	sessions map[string]*PlayerSession

	metrics     *Metrics
	rateLimiter *RateLimiter
	health      *HealthChecker

	done chan struct{}
}

// NewServer constructs a Server from cfg, wiring rate limiting (if
// enabled), Prometheus metrics, and the health checker, and starts the
// background session-cleanup sweep.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		config:   cfg,
		battles:  make(map[string]*BattleSession),
		sessions: make(map[string]*PlayerSession),
		metrics:  NewMetrics(),
		done:     make(chan struct{}),
	}
	if cfg.RateLimitEnabled {
		s.rateLimiter = NewRateLimiter(cfg)
	}
	s.health = NewHealthChecker(s)
	s.startSessionCleanup()
	return s
}

// Handler assembles the full HTTP route table wrapped in the standard
// middleware chain: request ID, panic recovery, request logging, CORS,
// rate limiting, then metrics instrumentation closest to the mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/battles", s.handleCreateBattle)
	mux.HandleFunc("/battles/", s.handleBattleRoutes)
	mux.HandleFunc("/health", s.health.HealthHandler)
	mux.HandleFunc("/ready", s.health.ReadinessHandler)
	mux.HandleFunc("/live", s.health.LivenessHandler)
	mux.Handle("/metrics", s.metrics.GetHandler())

	var h http.Handler = mux
	h = s.metrics.MetricsMiddleware(h)
	h = RateLimitingMiddleware(s.rateLimiter)(h)
	h = CORSMiddleware(s.config.AllowedOrigins)(h)
	h = LoggingMiddleware(h)
	h = RecoveryMiddleware(h)
	h = RequestIDMiddleware(h)
	return h
}

// Shutdown stops the background session-cleanup sweep and the rate
// limiter's cleanup goroutine. Battles already in memory are left as-is;
// this control surface keeps no persistent battle store (spec.md's
// Non-goals exclude save/resume).
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}
	return nil
}

// BattleCount reports how many battles are currently held in memory, for
// health reporting and operator visibility.
func (s *Server) BattleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.battles)
}
