// Package server exposes the remapping engine over HTTP: one POST route per
// configured API, plus health, metrics and OpenAPI endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Gobd/remap"
	"github.com/Gobd/remap/config"
	"github.com/Gobd/remap/currency"
	"github.com/Gobd/remap/openapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
)

// Version is reported by the OpenAPI document and the CLI.
var Version = "0.1.0"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIInfo describes one configured API on GET /apis.
type APIInfo struct {
	Name  string       `json:"name"`
	Route string       `json:"route"`
	Rules []remap.Rule `json:"rules"`
}

// Server routes HTTP requests to the remapping engine.
type Server struct {
	cfg     *config.Config
	engine  *remap.Engine
	logger  *slog.Logger
	metrics *metrics
	handler http.Handler
}

// New builds a server for cfg. engine is usually built with [NewEngine].
func New(cfg *config.Config, engine *remap.Engine, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		metrics: newMetrics(),
	}

	doc, err := buildDoc(cfg)
	if err != nil {
		return nil, fmt.Errorf("openapi document: %w", err)
	}
	docHandler, err := openapi.Handler(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi document: %w", err)
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests(logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/apis", s.listAPIs)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	r.Method(http.MethodGet, "/openapi.json", docHandler)

	for _, api := range cfg.APIs {
		r.Post(api.Route, s.remapHandler(api.Name))
	}

	s.handler = gzhttp.GzipHandler(r)
	return s, nil
}

// Handler returns the root handler, compression included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("Listening", slog.String("addr", ln.Addr().String()), slog.Int("apis", len(s.cfg.APIs)))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down", slog.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) listAPIs(w http.ResponseWriter, _ *http.Request) {
	apis := make([]APIInfo, 0, len(s.cfg.APIs))
	for _, api := range s.cfg.APIs {
		apis = append(apis, APIInfo{Name: api.Name, Route: api.Route, Rules: api.Rules})
	}
	writeJSON(w, http.StatusOK, apis)
}

func (s *Server) remapHandler(api string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		code := s.remap(w, r, api)
		s.metrics.observe(api, code, time.Since(start))
	}
}

// remap serves one payload and returns the status written.
func (s *Server) remap(w http.ResponseWriter, r *http.Request, api string) int {
	doc, status, err := s.decode(w, r)
	if err != nil {
		s.logger.Warn("Rejected payload",
			slog.String("request_id", RequestID(r.Context())),
			slog.String("api", api),
			slog.String("error", err.Error()))
		writeJSON(w, status, ErrorResponse{Error: "invalid payload", Details: err.Error()})
		return status
	}

	ctx := currency.WithAuthorizer(r.Context(), s.authorizer(r))
	out, err := s.engine.ApplyAPI(ctx, api, doc, s.cfg.Defaults, s.cfg.Overrides)
	if err != nil {
		s.logger.Error("Failed to process request",
			slog.String("request_id", RequestID(r.Context())),
			slog.String("api", api),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to process request", Details: err.Error()})
		return http.StatusInternalServerError
	}

	writeJSON(w, http.StatusOK, out)
	return http.StatusOK
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (any, int, error) {
	limit := s.cfg.Server.MaxBodyBytes
	if limit <= 0 {
		limit = config.DefaultConfig().Server.MaxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return nil, http.StatusBadRequest, errors.New("empty body")
		default:
			return nil, http.StatusBadRequest, err
		}
	}
	if doc == nil {
		return nil, http.StatusBadRequest, errors.New("payload is null")
	}
	if dec.More() {
		return nil, http.StatusBadRequest, errors.New("unexpected data after payload")
	}
	return doc, 0, nil
}

func (s *Server) authorizer(r *http.Request) currency.Authorizer {
	switch s.cfg.Auth.Mode {
	case config.AuthDeny:
		return currency.DenyAll
	case config.AuthHeader:
		return currency.ParsePermissions(r.Header.Get(s.cfg.Auth.Header))
	default:
		return currency.AllowAll
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
