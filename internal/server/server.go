// File: internal/server/server.go

// Package server exposes the orchestrator operations over a local HTTP
// surface. One route per operation, tab id in the path, request bodies as
// JSON. Payload assembly and the size ceiling live in the orchestrator's
// encoder; this package only maps transport concerns.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/capture"
	"github.com/xkilldash9x/domlens-cli/internal/config"
	"github.com/xkilldash9x/domlens-cli/internal/inspect"
	"github.com/xkilldash9x/domlens-cli/internal/orchestrator"
	"github.com/xkilldash9x/domlens-cli/internal/search"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

// Server is the HTTP front end over one orchestrator.
type Server struct {
	orch    *orchestrator.Orchestrator
	encoder *orchestrator.Encoder
	cfg     config.ServerConfig
	log     *zap.Logger
	httpSrv *http.Server
}

// New builds the server and its router.
func New(orch *orchestrator.Orchestrator, cfg config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		orch:    orch,
		encoder: orchestrator.NewEncoder(cfg.MaxResponseBytes),
		cfg:     cfg,
		log:     logger.Named("server"),
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(brotliCompress)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1/tabs/{tabID}", func(r chi.Router) {
		r.Post("/overview", s.handleOverview)
		r.Post("/structure", s.handleStructure)
		r.Post("/search", s.handleSearch)
		r.Post("/inspect", s.handleInspect)
		r.Post("/actionable", s.handleActionable)
		r.Post("/portals", s.handlePortals)
		r.Delete("/", s.handleDropTab)
	})

	s.httpSrv = &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}
	return s
}

// Handler exposes the router, used by tests with httptest.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// ListenAndServe blocks until the context is canceled or the listener fails,
// then drains in-flight requests within the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownTimeout := s.cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down")
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	var req schemas.OverviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TabID = chi.URLParam(r, "tabID")

	resp, err := s.orch.Overview(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePayload(w, r, func() ([]byte, error) { return s.encoder.EncodeOverview(resp) })
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var req schemas.StructureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TabID = chi.URLParam(r, "tabID")

	resp, err := s.orch.Structure(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePayload(w, r, func() ([]byte, error) { return s.encoder.EncodeStructure(resp) })
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req schemas.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TabID = chi.URLParam(r, "tabID")

	resp, err := s.orch.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePayload(w, r, func() ([]byte, error) { return s.encoder.EncodeSearch(resp) })
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	var req schemas.InspectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TabID = chi.URLParam(r, "tabID")

	resp, err := s.orch.Inspect(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePayload(w, r, func() ([]byte, error) { return s.encoder.EncodeInspect(resp) })
}

func (s *Server) handleActionable(w http.ResponseWriter, r *http.Request) {
	var req schemas.ActionableRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TabID = chi.URLParam(r, "tabID")

	resp, err := s.orch.Actionable(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePayload(w, r, func() ([]byte, error) { return s.encoder.EncodeActionable(resp) })
}

func (s *Server) handlePortals(w http.ResponseWriter, r *http.Request) {
	var req schemas.PortalCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TabID = chi.URLParam(r, "tabID")

	resp, err := s.orch.CheckPortals(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePayload(w, r, func() ([]byte, error) { return s.encoder.EncodePortals(resp) })
}

func (s *Server) handleDropTab(w http.ResponseWriter, r *http.Request) {
	s.orch.DropTab(chi.URLParam(r, "tabID"))
	w.WriteHeader(http.StatusNoContent)
}

// writePayload encodes the response under the size ceiling and sends it.
func (s *Server) writePayload(w http.ResponseWriter, r *http.Request, encode func() ([]byte, error)) {
	payload, err := encode()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(payload); err != nil {
		s.log.Debug("write failed", zap.Error(err))
	}
}

// writeError maps domain errors to HTTP status codes: invalid input 400,
// missing references 404, capture failures 503, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, search.ErrInvalidQuery):
		status = http.StatusBadRequest
	case errors.Is(err, snapshot.ErrBaselineNotFound), errors.Is(err, inspect.ErrElementNotFound):
		status = http.StatusNotFound
	case errors.Is(err, capture.ErrCaptureUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	s.log.Warn("request failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	writeJSONError(w, status, err.Error())
}
