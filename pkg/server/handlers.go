package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/matzehuels/sankeyflow/pkg/buildinfo"
	"github.com/matzehuels/sankeyflow/pkg/errors"
	"github.com/matzehuels/sankeyflow/pkg/graph"
	"github.com/matzehuels/sankeyflow/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is the body of a successful POST /v1/layout.
type LayoutResponse struct {
	GraphHash string       `json:"graph_hash"`
	CacheHit  bool         `json:"cache_hit"`
	Layout    graph.Layout `json:"layout"`
	Stats     StatsJSON    `json:"stats"`
}

// StatsJSON reports layout statistics.
type StatsJSON struct {
	Nodes      int     `json:"nodes"`
	Links      int     `json:"links"`
	Columns    int     `json:"columns"`
	DurationMS float64 `json:"duration_ms"`
}

// CheckRequest is the body of POST /v1/check. Layout is kept raw so it can
// be decoded with [graph.UnmarshalLayout], which rejects dangling links.
type CheckRequest struct {
	Layout    json.RawMessage `json:"layout"`
	Tolerance float64         `json:"tolerance,omitempty"`
}

// CheckResponse is the body of a successful POST /v1/check.
type CheckResponse struct {
	OK bool `json:"ok"`
	pipeline.CheckReport
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Cache  string         `json:"cache"`
	Uptime string         `json:"uptime"`
	Build  buildinfo.Info `json:"build"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.Graph.Nodes == nil && req.Graph.Links == nil {
		s.respondErr(w, r, errors.New(errors.ErrCodeInvalidInput, "request has no graph"))
		return
	}

	opts := s.cfg.Defaults.Merge(req.Options)
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))
	res, err := s.runner.ComputeLayout(r.Context(), req.Graph, opts)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, LayoutResponse{
		GraphHash: res.GraphHash,
		CacheHit:  res.CacheHit,
		Layout:    res.Layout,
		Stats: StatsJSON{
			Nodes:      res.Stats.NodeCount,
			Links:      res.Stats.LinkCount,
			Columns:    res.Stats.Columns,
			DurationMS: float64(res.Stats.LayoutTime) / float64(time.Millisecond),
		},
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if len(req.Layout) == 0 {
		s.respondErr(w, r, errors.New(errors.ErrCodeInvalidInput, "request has no layout"))
		return
	}
	layout, err := graph.UnmarshalLayout(req.Layout)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	report, err := s.runner.CheckLayout(r.Context(), layout, req.Tolerance)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, CheckResponse{OK: report.OK(), CheckReport: report})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Cache:  "ok",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
		Build:  buildinfo.Get(),
	}
	status := http.StatusOK
	if p, ok := s.runner.Cache.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Cache = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	s.respondJSON(w, status, resp)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestID(r.Context()), "error", err)
	}
	s.respondError(w, r, status, code, msg)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: RequestID(r.Context()),
	})
}

func panicError(v any) error {
	return errors.New(errors.ErrCodeInternal, "panic: %v", v)
}
