package sim

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/syuhei176/city-simulator/metrics"
	"github.com/syuhei176/city-simulator/model"
)

// Engine is the simulation root. It owns the grid's transportation state, the
// graph and pathfinders, both simulators, the ID allocator and the seeded
// RNG, and advances everything synchronously from one tick-driven loop. No
// component blocks or runs concurrently inside a tick.
type Engine struct {
	Grid      *model.Grid
	Graph     *RoadNetworkGraph
	Paths     *PathFinder
	GridPaths *GridPathFinder
	Traffic   *TrafficSimulator
	Commutes  *CommuteSimulator
	Lights    *TrafficLights

	cfg          Config
	rng          *rand.Rand
	ids          *IDSource
	tick         int
	sinceRebuild int

	// mu serializes the tick loop against HTTP snapshot reads and road
	// edits; every per-tick update still runs to completion under one hold.
	mu sync.Mutex
}

// NewEngine assembles the simulation over an existing grid and citizen
// directory and performs the initial graph build.
func NewEngine(grid *model.Grid, citizens CitizenDirectory, cfg Config) *Engine {
	rng := rand.New(rand.NewSource(cfg.Seed))
	ids := NewIDSource(0)

	graph := NewRoadNetworkGraph(grid)
	graph.Build()
	paths := NewPathFinder(graph)
	gridPaths := NewGridPathFinder(grid, cfg.PathCacheCapacity)
	lights := NewTrafficLights(0)
	lights.Sync(graph)

	return &Engine{
		Grid:      grid,
		Graph:     graph,
		Paths:     paths,
		GridPaths: gridPaths,
		Traffic:   NewTrafficSimulator(grid, graph, paths, ids, rng, cfg),
		Commutes:  NewCommuteSimulator(grid, gridPaths, citizens, cfg),
		Lights:    lights,
		cfg:       cfg,
		rng:       rng,
		ids:       ids,
	}
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() int { return e.tick }

// Advance runs exactly one simulation tick in fixed order: commute step,
// traffic step, then the rate-limited rebuild check. Within the tick, vehicle
// speeds read the density written by the previous tick; the traffic step
// writes the new density last.
func (e *Engine) Advance() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	started := time.Now()
	e.tick++

	var events []Event
	events = append(events, e.Commutes.Step()...)
	events = append(events, e.Traffic.Step()...)
	e.Lights.Step()

	e.sinceRebuild++
	if e.sinceRebuild >= e.cfg.RebuildInterval {
		e.sinceRebuild = 0
		if e.Graph.NeedsRebuild() {
			e.rebuild()
			events = append(events, RebuildEvent{
				Nodes:      e.Graph.NodeCount(),
				Edges:      len(e.Graph.AllEdges()),
				Components: e.Graph.ComponentCount(),
			})
		}
	}

	events = append(events, TickEvent{
		Tick:       e.tick,
		Vehicles:   e.Traffic.VehicleCount(),
		AvgSpeed:   e.Traffic.AverageSpeed(),
		AvgDensity: e.averageDensity(),
	})
	metrics.TickDuration.Observe(time.Since(started).Seconds())
	return events
}

// OnRoadEdit applies an external road placement or removal, then invalidates
// the grid path cache and rebuilds the graph synchronously, before any
// further query can observe the stale layout.
func (e *Engine) OnRoadEdit(k model.CellKey, place bool, t model.RoadType) (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if place {
		if !e.Grid.SetRoad(k, t) {
			return nil, false
		}
	} else {
		if !e.Grid.IsRoad(k.X, k.Y) {
			return nil, false
		}
		e.Grid.ClearRoad(k)
	}
	e.rebuild()
	return RoadEditEvent{Key: k, Placed: place}, true
}

func (e *Engine) rebuild() {
	e.GridPaths.ClearCache()
	e.Graph.Build()
	e.Lights.Sync(e.Graph)
	log.Printf("graph rebuilt: %d nodes, %d components", e.Graph.NodeCount(), e.Graph.ComponentCount())
}

// NetworkView returns the graph's nodes, edges, and signal states under the
// engine lock, for collaborators reading outside the tick goroutine. Nodes
// and edges are immutable once built; a rebuild replaces them wholesale, so
// a view taken here stays internally consistent.
func (e *Engine) NetworkView() (nodes []*RoadNode, edges []*RoadEdge, lights []LightState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Graph.AllNodes(), e.Graph.AllEdges(), e.Lights.States()
}

// VehicleList returns a copy of the live vehicles under the engine lock.
func (e *Engine) VehicleList() []model.Vehicle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Traffic.Vehicles()
}

// RoadLayout returns the grid dimensions and a copy of its road cells under
// the engine lock.
func (e *Engine) RoadLayout() (width, height int, cells []model.Cell) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.Grid.RoadCells() {
		cells = append(cells, *c)
	}
	return e.Grid.Width, e.Grid.Height, cells
}

func (e *Engine) averageDensity() float64 {
	cells := e.Grid.RoadCells()
	if len(cells) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range cells {
		sum += c.TrafficDensity
	}
	return sum / float64(len(cells))
}

// Start free-runs the engine at the configured tick rate, emitting events on
// the returned channel. It returns a stop function to cancel and a wait
// function that blocks until the loop has drained and closed the channel.
// Events are dropped rather than blocking the tick loop when the consumer
// falls behind.
func (e *Engine) Start() (events <-chan Event, stop func(), wait func()) {
	ch := make(chan Event, 256)
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	interval := time.Duration(e.cfg.TickMillis) * time.Millisecond
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	go func() {
		defer close(ch)
		defer close(doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				for _, ev := range e.Advance() {
					select {
					case ch <- ev:
					default:
					}
				}
			}
		}
	}()

	var stopOnce sync.Once
	stop = func() { stopOnce.Do(func() { close(stopCh) }) }
	wait = func() { <-doneCh }
	return ch, stop, wait
}
