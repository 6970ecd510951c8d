// Package server exposes the estimators as an HTTP job service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/cwbudde/isdestimator/internal/store"
)

// Server represents the HTTP server
type Server struct {
	jobManager   *JobManager
	reportStore  store.Store
	addr         string
	server       *http.Server
	pingInterval time.Duration

	// ctx bounds every job; Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server listening on addr. reportStore caches reports
// across jobs and may be nil.
func NewServer(addr string, reportStore store.Store) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		jobManager:   NewJobManager(),
		reportStore:  reportStore,
		addr:         addr,
		pingInterval: 30 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/estimates", s.handleEstimates)
	mux.HandleFunc("/api/v1/estimates/", s.handleEstimatesWithID)
	mux.HandleFunc("/api/v1/reports", s.handleReports)
	mux.HandleFunc("/api/v1/reports/", s.handleReportWithKey)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown cancels running jobs and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server", "running_jobs", len(s.jobManager.GetRunningJobs()))
	s.cancel()
	return s.server.Shutdown(ctx)
}

// handleEstimates handles /api/v1/estimates
func (s *Server) handleEstimates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateEstimate(w, r)
	case http.MethodGet:
		s.handleListEstimates(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleEstimatesWithID handles /api/v1/estimates/:id/*
func (s *Server) handleEstimatesWithID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/estimates/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	switch {
	case len(parts) == 1:
		s.handleGetEstimate(w, r, jobID)
	case len(parts) == 2 && parts[1] == "table":
		s.handleGetEstimateTable(w, r, jobID)
	case len(parts) == 2 && parts[1] == "stream":
		s.handleEstimateStream(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateEstimate handles POST /api/v1/estimates
func (s *Server) handleCreateEstimate(w http.ResponseWriter, r *http.Request) {
	var config JobConfig
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	config = config.Normalize()
	if err := config.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key, err := store.ReportKey(config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	job := s.jobManager.CreateJob(config, key)

	go func() {
		if err := runJob(s.ctx, s.jobManager, s.reportStore, job.ID); err != nil {
			slog.Debug("Job ended with error", "job_id", job.ID, "error", err)
		}
	}()

	writeJSON(w, http.StatusCreated, job)
}

// handleListEstimates handles GET /api/v1/estimates
func (s *Server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// handleGetEstimate handles GET /api/v1/estimates/:id
func (s *Server) handleGetEstimate(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleGetEstimateTable handles GET /api/v1/estimates/:id/table. The query
// parameters params, tildeo and precision override the table options.
func (s *Server) handleGetEstimateTable(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if job.State != StateCompleted || job.Report == nil {
		http.Error(w, fmt.Sprintf("Job is %s", job.State), http.StatusConflict)
		return
	}

	opts, err := tableOptions(r, job.Config.TildeO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := job.Report.WriteTable(w, opts); err != nil {
		slog.Error("Failed to write table", "job_id", jobID, "error", err)
	}
}

func tableOptions(r *http.Request, tildeO bool) (estimator.TableOptions, error) {
	opts := estimator.DefaultTableOptions()
	opts.ShowTildeO = tildeO

	q := r.URL.Query()
	if v := q.Get("params"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid params value %q", v)
		}
		opts.ShowParameters = b
	}
	if v := q.Get("tildeo"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid tildeo value %q", v)
		}
		opts.ShowTildeO = b
	}
	if v := q.Get("precision"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p > 12 {
			return opts, fmt.Errorf("invalid precision value %q", v)
		}
		opts.Precision = p
	}
	return opts, nil
}

// handleReports handles GET /api/v1/reports
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.reportStore == nil {
		writeJSON(w, http.StatusOK, []store.ReportInfo{})
		return
	}

	infos, err := s.reportStore.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleReportWithKey handles GET and DELETE /api/v1/reports/:key
func (s *Server) handleReportWithKey(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	if key == "" || strings.Contains(key, "/") {
		http.Error(w, "Report key required", http.StatusBadRequest)
		return
	}
	if s.reportStore == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		report, err := s.reportStore.Load(key)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	case http.MethodDelete:
		if err := s.reportStore.Delete(key); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
