// Package api serves the session state over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (control plane).
// Live events stream over SSE or a websocket feed.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"github.com/talgya/crowdwave/internal/engine"
	"github.com/talgya/crowdwave/internal/events"
	"github.com/talgya/crowdwave/internal/persistence"
	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/wave"
)

const (
	maxSSEConns    = 4
	recentEventCap = 100
)

// Server serves the session state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Bus      *events.Bus
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	startedAt time.Time
	limiter   *RateLimiter
	upgrader  websocket.Upgrader

	sseConns int32

	mu     sync.Mutex
	recent []events.Event
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.startedAt = time.Now()
	s.limiter = NewRateLimiter(10, time.Minute)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Keep a catch-up ring of recent events for new stream clients.
	s.Bus.Subscribe(func(ev events.Event) {
		s.mu.Lock()
		s.recent = append(s.recent, ev)
		if len(s.recent) > recentEventCap {
			s.recent = s.recent[1:]
		}
		s.mu.Unlock()
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/sections", s.handleSections)
	mux.HandleFunc("GET /api/waves", s.handleWaves)
	mux.HandleFunc("GET /api/hype", s.handleHype)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /ws/feed", s.handleWSFeed)
	mux.HandleFunc("POST /api/wave", s.handleCommandWave)
	mux.HandleFunc("POST /api/service", s.handleService)

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("API server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("API server stopped", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.AdminKey == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.Stats()
	tick := s.Sim.CurrentTick()
	writeJSON(w, map[string]any{
		"tick":          tick,
		"session_clock": engine.SessionClock(tick, s.Eng.Interval),
		"uptime":        humanize.Time(s.startedAt),
		"population":    humanize.Comma(int64(stats.Population)),
		"total_score":   humanize.Comma(int64(stats.TotalScore)),
		"stats":         stats,
	})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.SectionSummaries())
}

func (s *Server) handleWaves(w http.ResponseWriter, r *http.Request) {
	n := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 && v <= 100 {
			n = v
		}
	}

	resp := map[string]any{
		"active": s.Sim.ActiveWave(),
		"recent": s.Sim.RecentWaves(n),
	}
	if s.DB != nil {
		if stored, err := s.DB.LoadRecentWaves(n); err == nil {
			resp["stored"] = stored
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleHype(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.HypeState())
}

// handleCommandWave starts a wave externally, e.g. a reversing wave from
// the operator console.
func (s *Server) handleCommandWave(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !s.limiter.Allow(remoteIP(r)) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Type   string `json:"type"`
		Origin string `json:"origin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	typ := wave.Type(req.Type)
	if typ == "" {
		typ = wave.TypeNormal
	}

	if err := s.Sim.CommandWave(typ, req.Origin); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"status": "started"})
}

// handleService dispatches a vendor to one spectator. The refill lands
// after the configured travel delay.
func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !s.limiter.Allow(remoteIP(r)) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Spectator uint64  `json:"spectator"`
		Refill    float64 `json:"refill"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Refill <= 0 {
		req.Refill = 40
	}

	if err := s.Sim.RequestService(spectator.ID(req.Spectator), req.Refill); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"status": "dispatched"})
}

// handleStream is the SSE event feed with catch-up and heartbeat.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.sseConns, 1)
	defer atomic.AddInt32(&s.sseConns, -1)
	if current > maxSSEConns {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan events.Event, 64)
	subID := s.Bus.Subscribe(func(ev events.Event) {
		select {
		case ch <- ev:
		default: // Slow client: drop rather than stall the tick.
		}
	})
	defer s.Bus.Unsubscribe(subID)

	s.mu.Lock()
	catchup := make([]events.Event, len(s.recent))
	copy(catchup, s.recent)
	s.mu.Unlock()
	for _, ev := range catchup {
		writeSSEEvent(w, ev)
	}
	flusher.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSEEvent(w, ev)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
}

// handleWSFeed is the websocket version of the event feed.
func (s *Server) handleWSFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := make(chan events.Event, 64)
	subID := s.Bus.Subscribe(func(ev events.Event) {
		select {
		case ch <- ev:
		default:
		}
	})
	defer s.Bus.Unsubscribe(subID)

	// Reader goroutine only to detect close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case ev := <-ch:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func remoteIP(r *http.Request) string {
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx >= 0 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
