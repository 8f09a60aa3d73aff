// Package api exposes the demo's read-only HTTP surface: a health
// endpoint and a stats endpoint reporting live admission counters.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// StatsProvider reports live admission/call counters. Implemented by a thin
// wrapper around callcore.Core in cmd/callcore-demo.
type StatsProvider interface {
	Stats() Stats
}

// Stats summarizes current core activity for the /api/v1/stats endpoint.
type Stats struct {
	ActiveCalls   int `json:"active_calls"`
	PendingQueued int `json:"pending_queued"`
}

// Server is a minimal HTTP API server.
type Server struct {
	addr       string
	httpServer *http.Server
	stats      StatsProvider
	startTime  time.Time
	logger     *slog.Logger
}

// NewServer builds a health/stats server bound to addr. stats may be nil,
// in which case /api/v1/stats reports zeroes.
func NewServer(logger *slog.Logger, addr string, stats StatsProvider) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:      addr,
		stats:     stats,
		startTime: time.Now(),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/stats", s.handleStats)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins listening for HTTP requests in the background.
func (s *Server) Start() error {
	s.logger.Info("[API] starting HTTP API server", "addr", s.addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("[API] server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully closes the server.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{}
	if s.stats != nil {
		stats = s.stats.Stats()
	}
	s.writeJSON(w, stats)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("[API] failed to write response", "error", err)
	}
}
