package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/syuhei176/city-simulator/model"
	"github.com/syuhei176/city-simulator/sim"
)

// Server exposes the running simulation over HTTP: read-only snapshots for
// stats/render collaborators, the road-edit mutation path, a live SSE event
// stream, and Prometheus metrics.
type Server struct {
	engine *sim.Engine

	subs subscriberSet
}

// New wraps an engine in an HTTP surface.
func New(engine *sim.Engine) *Server {
	return &Server{engine: engine}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/network", s.handleNetwork).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles", s.handleVehicles).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/grid", s.handleGrid).Methods(http.MethodGet)
	r.HandleFunc("/api/road", s.handleRoadEdit).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/stream", s.handleStream).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Broadcast forwards a simulation event to every connected stream. Slow
// consumers are skipped rather than blocking the pump.
func (s *Server) Broadcast(ev sim.Event) {
	s.subs.each(func(ch chan sim.Event) {
		select {
		case ch <- ev:
		default:
		}
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	j, _ := json.Marshal(v)
	w.Write(j)
}

// The read handlers go through the engine's lock-held view methods rather
// than touching Graph/Traffic/Grid directly: the tick goroutine mutates that
// state every tick, and these run on HTTP goroutines.

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	nodes, edges, lights := s.engine.NetworkView()
	writeJSON(w, map[string]any{
		"nodes":  nodes,
		"edges":  edges,
		"lights": lights,
	})
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.VehicleList())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Snapshot())
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	type cellJSON struct {
		Key      model.CellKey  `json:"key"`
		RoadType model.RoadType `json:"road_type"`
		Density  float64        `json:"traffic_density"`
	}
	width, height, cells := s.engine.RoadLayout()
	out := make([]cellJSON, len(cells))
	for i, c := range cells {
		out[i] = cellJSON{Key: c.Key, RoadType: c.RoadType, Density: c.TrafficDensity}
	}
	writeJSON(w, map[string]any{
		"width":  width,
		"height": height,
		"roads":  out,
	})
}

// handleRoadEdit applies an external road placement or removal. The engine
// clears the path cache and rebuilds the graph synchronously before this
// handler returns, so no later query sees the stale layout.
func (s *Server) handleRoadEdit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(204)
		return
	}
	var req struct {
		X        int            `json:"x"`
		Y        int            `json:"y"`
		Place    bool           `json:"place"`
		RoadType model.RoadType `json:"road_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", 400)
		return
	}
	ev, ok := s.engine.OnRoadEdit(model.CellKey{X: req.X, Y: req.Y}, req.Place, req.RoadType)
	if !ok {
		http.Error(w, "edit rejected", 409)
		return
	}
	s.Broadcast(ev)
	w.WriteHeader(204)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", 500)
		return
	}

	connID := uuid.New().String()
	ch := make(chan sim.Event, 256)
	s.subs.add(connID, ch)
	defer s.subs.remove(connID)
	log.Printf("stream %s connected", connID)

	flush := func(event string, payload any) {
		b, _ := json.Marshal(payload)
		fmt.Fprintf(w, "event: %s\n", event)
		fmt.Fprintf(w, "data: %s\n\n", string(b))
		flusher.Flush()
	}
	flush("init", map[string]any{"conn_id": connID, "stats": s.engine.Snapshot()})

	for {
		select {
		case <-r.Context().Done():
			log.Printf("stream %s disconnected", connID)
			return
		case ev := <-ch:
			flush(eventName(ev), ev)
		}
	}
}

// eventName maps an event type to its SSE event label.
func eventName(ev sim.Event) string {
	switch ev.(type) {
	case sim.TickEvent:
		return "tick"
	case sim.VehicleAddEvent:
		return "vehicle_add"
	case sim.VehicleArriveEvent:
		return "vehicle_arrive"
	case sim.RebuildEvent:
		return "rebuild"
	case sim.RoadEditEvent:
		return "road_edit"
	case sim.CommuteStartEvent:
		return "commute_start"
	case sim.CommuteEndEvent:
		return "commute_end"
	case sim.JobRevokedEvent:
		return "job_revoked"
	default:
		return "event"
	}
}
