// Package api serves read-only observation endpoints over HTTP and a live
// per-tick feed over websocket. The simulation itself stays single-threaded;
// handlers read a snapshot that the tick loop publishes between commits.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/huokedu/ecosystem/internal/engine"
	"github.com/huokedu/ecosystem/internal/organism"
)

// Snapshot is the serializable view of one committed simulation state.
type Snapshot struct {
	Tick      uint64          `json:"tick"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Organisms []OrganismView  `json:"organisms"`
	Stats     engine.SimStats `json:"stats"`
	Events    []engine.Event  `json:"events,omitempty"`
}

// OrganismView is one organism's observable state.
type OrganismView struct {
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	Species string  `json:"species"`
	Kind    string  `json:"kind"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	BakedX  int     `json:"baked_x"`
	BakedY  int     `json:"baked_y"`
	Energy  float64 `json:"energy"`
	Alive   bool    `json:"alive"`
}

// Server serves simulation state over HTTP.
type Server struct {
	Eng  *engine.Engine
	Port int

	mu       sync.RWMutex
	snapshot Snapshot

	live liveHub
}

// Publish stores a fresh snapshot and pushes it to live subscribers.
// Called by the tick loop after each commit; everything the handlers read
// comes from here, never from the live simulation structures.
func (s *Server) Publish(sim *engine.Simulation) {
	snap := MakeSnapshot(sim)

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.live.broadcast(snap)
}

// MakeSnapshot builds a Snapshot from the simulation's current state.
func MakeSnapshot(sim *engine.Simulation) Snapshot {
	views := make([]OrganismView, 0, len(sim.Organisms))
	for _, o := range sim.Organisms {
		x, y := o.Position()
		bx, by := o.BakedPosition()
		views = append(views, OrganismView{
			Index:   o.Index(),
			Name:    o.Name,
			Species: o.Species,
			Kind:    organism.KindName(o.Kind),
			X:       x,
			Y:       y,
			BakedX:  bx,
			BakedY:  by,
			Energy:  o.Metabolism.Energy,
			Alive:   o.Alive,
		})
	}

	events := make([]engine.Event, len(sim.Events))
	copy(events, sim.Events)

	return Snapshot{
		Tick:      sim.CurrentTick(),
		Width:     sim.Grid.XSize(),
		Height:    sim.Grid.YSize(),
		Organisms: views,
		Stats:     sim.Stats,
		Events:    events,
	}
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/organisms", s.handleOrganisms)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/live", s.handleLive)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	writeJSON(w, map[string]any{
		"tick":   snap.Tick,
		"width":  snap.Width,
		"height": snap.Height,
		"stats":  snap.Stats,
		"paused": s.Eng != nil && s.Eng.Speed <= 0,
	})
}

// handleGrid renders the committed occupancy as a sparse cell list.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	snap := s.current()

	type cellView struct {
		X       int    `json:"x"`
		Y       int    `json:"y"`
		Index   int    `json:"index"`
		Species string `json:"species"`
	}
	var cells []cellView
	for _, o := range snap.Organisms {
		if !o.Alive || o.BakedX < 0 {
			continue
		}
		cells = append(cells, cellView{X: o.BakedX, Y: o.BakedY, Index: o.Index, Species: o.Species})
	}
	writeJSON(w, map[string]any{
		"tick":   snap.Tick,
		"width":  snap.Width,
		"height": snap.Height,
		"cells":  cells,
	})
}

func (s *Server) handleOrganisms(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	writeJSON(w, snap.Organisms)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	writeJSON(w, snap.Events)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
