// Package server exposes the skill as an Alexa-style HTTPS webhook.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/skill"
	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// SecretHeader carries the shared secret when one is configured.
const SecretHeader = "X-Libby-Secret"

const maxBodyBytes = 64 << 10

// Handler answers one skill turn.
type Handler interface {
	Handle(ctx context.Context, req skill.Request) skill.Response
}

// Server is the HTTP webhook the voice host posts turns to.
type Server struct {
	cfg      config.ServerConfig
	handler  Handler
	sessions *SessionStore
	limiter  *rate.Limiter
	logger   *log.Logger
	router   *mux.Router
}

// Option configures a Server during construction.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionStore replaces the default in-memory store.
func WithSessionStore(store *SessionStore) Option {
	return func(s *Server) { s.sessions = store }
}

// New builds the webhook server for handler.
func New(cfg config.ServerConfig, handler Handler, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = NewSessionStore(time.Duration(cfg.SessionTTLMins) * time.Minute)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/").Subrouter()
	api.Use(s.requireSecret, s.rateLimit)
	api.HandleFunc("/skill", s.handleSkill).Methods(http.MethodPost)
	return r
}

// Router returns the HTTP handler for all routes.
func (s *Server) Router() http.Handler {
	return s.router
}

// Sessions exposes the server-side confirmation store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// ListenAndServe serves on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for up to the configured shutdown window.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	grace := time.Duration(s.cfg.ShutdownSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	s.logger.Info("shutting down webhook", "grace", grace)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Debug("expired pending confirmations", "count", n)
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request) {
	var env RequestEnvelope
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sessionID := env.Session.SessionID
	conversationID := sessionID
	if conversationID == "" {
		conversationID = env.Request.RequestID
	}
	req := skill.Request{
		SessionID:    conversationID,
		Source:       "serve",
		Intent:       env.IntentName(),
		Slots:        env.SlotValues(),
		Confirmation: env.Pending(),
		NewSession:   env.Session.New,
	}
	if req.Confirmation == nil && sessionID != "" && !req.NewSession {
		if pending, ok := s.sessions.Get(sessionID); ok {
			req.Confirmation = pending
		}
	}

	resp := s.handler.Handle(r.Context(), req)

	if sessionID != "" {
		if resp.Confirmation != nil && !resp.EndSession {
			s.sessions.Put(sessionID, resp.Confirmation)
		} else {
			s.sessions.Delete(sessionID)
		}
	}

	writeJSON(w, http.StatusOK, Encode(resp))
}

func (s *Server) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.SharedSecret != "" {
			got := r.Header.Get(SecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.SharedSecret)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
