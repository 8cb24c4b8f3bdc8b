// Package server exposes the validation engine and the structured-output
// mediator over HTTP. The server holds no request state: validation is a
// pure function of the posted snapshot, and each generate call resolves its
// provider from the current config.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"gridsmith/internal/assist"
	"gridsmith/internal/config"
	"gridsmith/internal/logging"
	"gridsmith/internal/provider"
	"gridsmith/internal/records"
	"gridsmith/internal/structured"
	"gridsmith/internal/validation"
)

// Server wires the engine, mediator, and assist features to HTTP handlers.
type Server struct {
	engine    *validation.Engine
	mediator  *structured.Mediator
	assistant *assist.Assistant
	cfg       *config.Watcher
	logger    *zap.Logger
	mux       *http.ServeMux
}

// New builds a server around a watched config.
func New(cfg *config.Watcher, logger *zap.Logger) *Server {
	mediator := structured.NewMediator(structured.Options{})
	s := &Server{
		engine:   validation.NewEngine(),
		mediator: mediator,
		cfg:      cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.assistant = assist.NewAssistant(mediator, func() (provider.Client, error) {
		return s.resolveClient("")
	})

	s.mux.HandleFunc("POST /api/validate", s.handleValidate)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /api/corrections", s.handleCorrections)
	s.mux.HandleFunc("POST /api/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/rules/synthesize", s.handleRuleSynthesis)
	s.mux.HandleFunc("POST /api/rules/suggest", s.handleRuleSuggestions)
	s.mux.HandleFunc("GET /api/schemas", s.handleSchemas)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the request-logged root handler.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// resolveClient picks the provider for one call. kind overrides the
// configured selection when non-empty.
func (s *Server) resolveClient(kind string) (provider.Client, error) {
	pc, err := config.DetectProvider(s.cfg.Current(), kind)
	if err != nil {
		return nil, err
	}
	return provider.New(pc)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
		logging.Server("%s %s in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var snap records.Snapshot
	if !decodeBody(w, r, &snap) {
		return
	}
	errs := s.engine.Validate(snap)
	writeJSON(w, http.StatusOK, map[string]any{
		"errors":  errs,
		"summary": validation.Summarize(errs),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt   string `json:"prompt"`
		Schema   string `json:"schema"`
		Provider string `json:"provider,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	schema, err := structured.Lookup(req.Schema)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	client, err := s.resolveClient(req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	value, err := s.mediator.Generate(r.Context(), client, req.Prompt, schema)
	if err != nil {
		s.logger.Warn("generate failed", zap.String("schema", req.Schema), zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value})
}

func (s *Server) handleCorrections(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Snapshot records.Snapshot          `json:"snapshot"`
		Errors   []records.ValidationError `json:"errors"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	suggestions, err := s.assistant.SuggestCorrections(r.Context(), req.Snapshot, req.Errors)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	filter, err := s.assistant.TranslateSearch(r.Context(), req.Query)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filter": filter})
}

func (s *Server) handleRuleSynthesis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	rule, err := s.assistant.SynthesizeRule(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rule": rule})
}

func (s *Server) handleRuleSuggestions(w http.ResponseWriter, r *http.Request) {
	var snap records.Snapshot
	if !decodeBody(w, r, &snap) {
		return
	}
	rules, err := s.assistant.SuggestRules(r.Context(), snap)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"schemas": structured.Names()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	client, err := s.resolveClient("")
	healthy := err == nil && client.Healthy(r.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"provider_healthy": healthy})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
