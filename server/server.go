// Package server implements the HTTP backend the client syncs with:
// the model catalog at /api/config and chat replies at /api/chat.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"multiai/backend"
	"multiai/catalog"
	"multiai/observability"
)

const maxBodyBytes = 1 << 20

// providerEnv maps provider ids to the env var holding their API key.
var providerEnv = []struct {
	id  string
	env string
}{
	{"openai", "OPENAI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"google", "GOOGLE_API_KEY"},
	{"perplexity", "PERPLEXITY_API_KEY"},
	{"deepseek", "DEEPSEEK_API_KEY"},
}

type Server struct {
	responder Responder
	groups    []catalog.ModelGroup
	defaults  catalog.Defaults
	getenv    func(string) string
	limiter   *clientLimiter
}

type Option func(*Server)

// WithResponder replaces the PlaceholderResponder.
func WithResponder(r Responder) Option {
	return func(s *Server) {
		s.responder = r
	}
}

// WithEnv sets the lookup used to detect configured providers.
func WithEnv(getenv func(string) string) Option {
	return func(s *Server) {
		s.getenv = getenv
	}
}

// New builds a server. The catalog file, when set, replaces the built-in
// model groups.
func New(cfg Config, opts ...Option) (*Server, error) {
	s := &Server{
		responder: PlaceholderResponder{},
		groups:    catalog.ServerGroups(),
		defaults:  cfg.Defaults,
		getenv:    os.Getenv,
	}
	if s.defaults.Model == "" {
		s.defaults = catalog.DefaultDefaults()
	}

	if cfg.CatalogFile != "" {
		groups, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog file: %w", err)
		}
		s.groups = groups
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = burstFor(cfg.RateLimit)
		}
		s.limiter = newClientLimiter(cfg.RateLimit, burst)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealthz)

	return chainMiddlewares(mux,
		s.withRateLimit,
		withCORS,
		withRecovery,
		withLogging,
		withRequestID,
	)
}

// ConfiguredProviders lists the providers whose API key env var is set.
func (s *Server) ConfiguredProviders() []catalog.Provider {
	providers := []catalog.Provider{}
	for _, p := range providerEnv {
		if s.getenv(p.env) == "" {
			continue
		}
		providers = append(providers, catalog.Provider{
			ID:      p.id,
			Name:    catalog.ProviderNames[p.id],
			Status:  "ready",
			Enabled: true,
		})
	}
	return providers
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, catalog.Config{
		Providers:   s.ConfiguredProviders(),
		ModelGroups: s.groups,
		Defaults:    s.defaults,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req backend.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		badRequest(w, "invalid JSON body")
		return
	}

	log := observability.LoggerFromContext(r.Context())
	log.Info("chat request", "model", req.Model, "messages", len(req.Messages))

	resp, err := s.responder.Respond(r.Context(), req)
	if err != nil {
		log.Error("chat responder failed", "model", req.Model, "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
