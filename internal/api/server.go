// Package api serves the simulation state over HTTP.
// GET endpoints are public and read published snapshots only.
// POST endpoints require a bearer token and queue player requests.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/scenario"
)

// maxEvents bounds the recent-event buffer.
const maxEvents = 500

// Speeder is the part of the engine the speed endpoint controls.
type Speeder interface {
	SetSpeed(float64)
	CurrentSpeed() float64
}

// Server serves published simulation snapshots over HTTP.
type Server struct {
	Addr        string
	Queue       scenario.Enqueuer // Receives POSTed requests. Nil disables them.
	Engine      Speeder           // Nil disables speed control.
	Metrics     http.Handler      // Mounted at MetricsPath when set.
	MetricsPath string
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.

	snapshot atomic.Pointer[engine.Snapshot]

	eventsMu sync.Mutex
	events   []engine.Event

	limiter *RateLimiter
}

// Publish replaces the served snapshot and appends events to the recent
// buffer. Called from the simulation goroutine.
func (s *Server) Publish(snap engine.Snapshot, events []engine.Event) {
	s.snapshot.Store(&snap)
	if len(events) == 0 {
		return
	}
	s.eventsMu.Lock()
	s.events = append(s.events, events...)
	if over := len(s.events) - maxEvents; over > 0 {
		s.events = append([]engine.Event(nil), s.events[over:]...)
	}
	s.eventsMu.Unlock()
}

// Handler returns the routing mux.
func (s *Server) Handler() http.Handler {
	if s.limiter == nil {
		s.limiter = NewRateLimiter(60, time.Minute)
	}

	mux := http.NewServeMux()

	// Public endpoints (read-only).
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/stars", s.handleStars)
	mux.HandleFunc("GET /api/v1/stars/{id}", s.handleStar)
	mux.HandleFunc("GET /api/v1/constellations", s.handleConstellations)
	mux.HandleFunc("GET /api/v1/player", s.handlePlayer)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/speed", s.handleSpeed)

	// Admin endpoints.
	mux.HandleFunc("POST /api/v1/requests", RateLimitMiddleware(s.limiter, s.adminOnly(s.handleRequest)))
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))

	if s.Metrics != nil {
		path := s.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, s.Metrics)
	}
	return mux
}

// Serve listens on Addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "", "metrics", s.Metrics != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("HTTP API stopped")
	return nil
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// current returns the latest snapshot, or writes 503 when none is published.
func (s *Server) current(w http.ResponseWriter) (*engine.Snapshot, bool) {
	snap := s.snapshot.Load()
	if snap == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	status := map[string]any{
		"tick":           snap.Stats.Tick,
		"sim_time":       snap.SimTime,
		"stars":          snap.Stats.Stars,
		"colonized":      snap.Stats.Colonized,
		"reachable":      snap.Stats.Reachable,
		"connections":    snap.Stats.Connections,
		"constellations": snap.Stats.Constellations,
		"units_produced": snap.Stats.UnitsProduced,
		"request_errors": snap.Stats.RequestErrors,
	}
	if s.Engine != nil {
		status["speed"] = s.Engine.CurrentSpeed()
	}
	writeJSON(w, status)
}

func (s *Server) handleStars(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	if r.URL.Query().Get("reachable") == "true" {
		var out []engine.NodeSnapshot
		for _, n := range snap.Stars {
			if n.Reachable {
				out = append(out, n)
			}
		}
		writeJSON(w, out)
		return
	}
	writeJSON(w, snap.Stars)
}

func (s *Server) handleStar(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "invalid star id", http.StatusBadRequest)
		return
	}
	for _, n := range snap.Stars {
		if n.ID == network.StarID(id) {
			writeJSON(w, n)
			return
		}
	}
	http.Error(w, "star not found", http.StatusNotFound)
}

func (s *Server) handleConstellations(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, snap.Constellations)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"stock": snap.Player,
		"units": snap.Units,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxEvents {
			limit = n
		}
	}
	category := r.URL.Query().Get("category")

	s.eventsMu.Lock()
	var events []engine.Event
	for _, e := range s.events {
		if category == "" || e.Category == category {
			events = append(events, e)
		}
	}
	s.eventsMu.Unlock()

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if s.Queue == nil {
		http.Error(w, "requests disabled", http.StatusServiceUnavailable)
		return
	}
	var action scenario.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req, err := action.Build()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Queue.Enqueue(req)
	slog.Info("request queued", "request", req.String())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"queued": req.String()})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		http.Error(w, "speed control disabled", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Engine.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Engine.CurrentSpeed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
