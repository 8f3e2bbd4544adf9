// Package api provides the HTTP surface an external dashboard drives the
// simulation through. GET endpoints are public (read-only observation);
// POST endpoints require a bearer token (control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/wealthsim/internal/engine"
	"github.com/talgya/wealthsim/internal/model"
	"github.com/talgya/wealthsim/internal/persistence"
	"github.com/talgya/wealthsim/internal/snapshot"
)

// Server serves simulation state over HTTP.
type Server struct {
	Sim *engine.Simulation
	Eng *engine.Engine
	DB  *persistence.DB
	Hub *Hub

	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins string // Extra allowed origins, comma-separated.
	SnapshotDir string

	allowedOrigins map[string]bool
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	if s.Hub == nil {
		s.Hub = NewHub()
	}
	s.allowedOrigins = s.buildOrigins()

	historyLimiter := NewRateLimiter(120, time.Minute)
	snapshotLimiter := NewRateLimiter(6, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/portrayal", s.handlePortrayal)
	mux.HandleFunc("/api/v1/gini", s.handleGini)
	mux.HandleFunc("/api/v1/stats/history", RateLimitMiddleware(historyLimiter, s.handleHistory))

	// Websocket stream for dashboards.
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Control plane (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/step", s.adminOnly(s.handleStep))
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(RateLimitMiddleware(snapshotLimiter, s.handleSnapshot)))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := s.corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// buildOrigins assembles the allowed CORS origin set. Localhost dev servers
// are always allowed.
func (s *Server) buildOrigins() map[string]bool {
	origins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range strings.Split(s.CORSOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins[origin] = true
		}
	}
	return origins
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "control endpoints disabled (no WEALTHSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.Sim.Config()
	latest := s.Sim.Latest()

	writeJSON(w, map[string]any{
		"name":           "wealthsim",
		"run_id":         s.Sim.RunID(),
		"tick":           s.Sim.Tick(),
		"running":        s.Eng.Running,
		"speed":          s.Eng.Speed,
		"agents":         cfg.Agents,
		"gini":           latest.Gini,
		"total_wealth":   s.Sim.TotalWealth(),
		"stream_clients": s.Hub.ClientCount(),
		"grid": map[string]any{
			"width":  cfg.GridWidth,
			"height": cfg.GridHeight,
			"torus":  cfg.Torus,
		},
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	type agentSummary struct {
		ID     model.AgentID `json:"id"`
		X      int           `json:"x"`
		Y      int           `json:"y"`
		Wealth int           `json:"wealth"`
	}

	agents := s.Sim.Agents()
	result := make([]agentSummary, 0, len(agents))
	for _, a := range agents {
		result = append(result, agentSummary{ID: a.ID, X: a.Pos.X, Y: a.Pos.Y, Wealth: a.Wealth})
	}
	writeJSON(w, result)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/agent/:id → parts[0]="" [1]="api" [2]="v1" [3]="agent" [4]=id
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing agent id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	a, ok := s.Sim.Agent(model.AgentID(id))
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]any{
		"id":        a.ID,
		"x":         a.Pos.X,
		"y":         a.Pos.Y,
		"wealth":    a.Wealth,
		"portrayal": model.PortrayalFor(&a),
	})
}

// handleGrid returns the board shape plus per-cell occupancy counts for
// non-empty cells.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	type cellEntry struct {
		X     int `json:"x"`
		Y     int `json:"y"`
		Count int `json:"count"`
	}

	cfg := s.Sim.Config()
	counts := make(map[[2]int]int)
	for _, a := range s.Sim.Agents() {
		counts[[2]int{a.Pos.X, a.Pos.Y}]++
	}

	cells := make([]cellEntry, 0, len(counts))
	for k, n := range counts {
		cells = append(cells, cellEntry{X: k[0], Y: k[1], Count: n})
	}

	writeJSON(w, map[string]any{
		"width":  cfg.GridWidth,
		"height": cfg.GridHeight,
		"torus":  cfg.Torus,
		"cells":  cells,
	})
}

func (s *Server) handlePortrayal(w http.ResponseWriter, r *http.Request) {
	latest := s.Sim.Latest()
	writeJSON(w, Frame{
		Tick:       s.Sim.Tick(),
		Gini:       latest.Gini,
		Portrayals: s.Sim.Portrayals(),
	})
}

func (s *Server) handleGini(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, map[string]any{
		"run_id": s.Sim.RunID(),
		"gini":   s.Sim.GiniSeries(limit),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runID = s.Sim.RunID()
	}

	fromTick := uint64(0)
	toTick := uint64(1<<63 - 1) // Max int64 — avoids uint64 high-bit SQLite driver issue.
	limit := 200

	if f := r.URL.Query().Get("from"); f != "" {
		if v, err := strconv.ParseUint(f, 10, 64); err == nil {
			fromTick = v
		}
	}
	if t := r.URL.Query().Get("to"); t != "" {
		if v, err := strconv.ParseUint(t, 10, 64); err == nil {
			toTick = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 5000 {
			limit = v
		}
	}

	rows, err := s.DB.LoadMetrics(runID, fromTick, toTick, limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		// Return empty array instead of error — the run may not have rows yet.
		writeJSON(w, []persistence.MetricRow{})
		return
	}
	if rows == nil {
		rows = []persistence.MetricRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed})
}

// handleStep advances a fixed number of ticks synchronously. Only valid
// while the loop is paused, so a manual step never interleaves with a
// running tick.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Ticks uint64 `json:"ticks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Ticks == 0 {
		req.Ticks = 1
	}
	if req.Ticks > 10000 {
		http.Error(w, "ticks must be 1-10000", http.StatusBadRequest)
		return
	}
	if s.Eng.Speed > 0 && s.Eng.Running {
		http.Error(w, "pause the simulation before stepping", http.StatusConflict)
		return
	}

	s.Eng.RunFor(req.Ticks)
	slog.Info("manual step", "ticks", req.Ticks, "tick", s.Sim.Tick())

	writeJSON(w, map[string]any{
		"tick": s.Sim.Tick(),
		"gini": s.Sim.Latest().Gini,
	})
}

// handleReset rebuilds the model, optionally with a new agent count or seed.
// Everything else keeps the current run's configuration.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Agents int    `json:"agents"`
		Seed   *int64 `json:"seed,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cfg := s.Sim.Config()
	if req.Agents != 0 {
		if req.Agents < 1 || req.Agents > 100000 {
			http.Error(w, "agents must be 1-100000", http.StatusBadRequest)
			return
		}
		cfg.Agents = req.Agents
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}

	if err := s.Sim.Reset(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"run_id": s.Sim.RunID(),
		"agents": cfg.Agents,
		"tick":   s.Sim.Tick(),
	})
}

// handleSnapshot exports the current run's metric history to a compressed
// file and returns its path.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.Sim.Config()
	path, err := snapshot.Write(s.SnapshotDir, snapshot.HistoryV1{
		RunID:   s.Sim.RunID(),
		Seed:    cfg.Seed,
		Agents:  cfg.Agents,
		Ticks:   s.Sim.Tick(),
		Records: s.Sim.Records(),
	})
	if err != nil {
		slog.Error("snapshot export failed", "error", err)
		http.Error(w, "snapshot export failed", http.StatusInternalServerError)
		return
	}

	slog.Info("snapshot exported", "path", path)
	writeJSON(w, map[string]string{"path": path})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
