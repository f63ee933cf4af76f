package sim

import (
	"testing"

	"github.com/syuhei176/city-simulator/model"
)

func newEngineFixture(t *testing.T, cfg Config) *Engine {
	t.Helper()
	g := model.NewGrid(cfg.GridWidth, cfg.GridHeight)
	for x := 0; x < cfg.GridWidth; x++ {
		g.SetRoad(model.CellKey{X: x, Y: 2}, model.RoadAvenue)
	}
	return NewEngine(g, &fakeDirectory{}, cfg)
}

func TestAdvanceEmitsTickEvent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 10, 5
	cfg.SpawnRate = 0
	e := newEngineFixture(t, cfg)

	for want := 1; want <= 3; want++ {
		events := e.Advance()
		last, ok := events[len(events)-1].(TickEvent)
		if !ok {
			t.Fatalf("last event is %T, want tick event", events[len(events)-1])
		}
		if last.Tick != want || e.Tick() != want {
			t.Fatalf("tick counter %d/%d, want %d", last.Tick, e.Tick(), want)
		}
	}
}

func TestRoadEditRebuildsSynchronously(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 10, 5
	cfg.SpawnRate = 0
	e := newEngineFixture(t, cfg)

	// warm the grid path cache
	if p := e.GridPaths.FindPath(model.CellKey{X: 0, Y: 0}, model.CellKey{X: 9, Y: 4}); !p.Exists {
		t.Fatal("expected a warm-up path")
	}
	if e.GridPaths.CacheLen() != 1 {
		t.Fatalf("cache priming failed, %d entries", e.GridPaths.CacheLen())
	}
	nodesBefore := e.Graph.NodeCount()

	ev, ok := e.OnRoadEdit(model.CellKey{X: 4, Y: 0}, true, model.RoadStreet)
	if !ok {
		t.Fatal("valid road placement rejected")
	}
	if re, isEdit := ev.(RoadEditEvent); !isEdit || !re.Placed {
		t.Fatalf("unexpected edit event %+v", ev)
	}
	if e.GridPaths.CacheLen() != 0 {
		t.Fatal("road edit must clear the path cache")
	}
	if e.Graph.NodeCount() != nodesBefore+1 {
		t.Fatalf("graph not rebuilt: %d nodes, want %d", e.Graph.NodeCount(), nodesBefore+1)
	}
	if e.Graph.NeedsRebuild() {
		t.Fatal("graph still flagged stale after a synchronous rebuild")
	}
}

func TestRoadEditRejections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 10, 5
	cfg.SpawnRate = 0
	e := newEngineFixture(t, cfg)

	water := model.CellKey{X: 1, Y: 0}
	e.Grid.SetTerrain(water, model.TerrainWater)
	if _, ok := e.OnRoadEdit(water, true, model.RoadStreet); ok {
		t.Fatal("placing a road on water must be rejected")
	}
	if _, ok := e.OnRoadEdit(model.CellKey{X: 5, Y: 4}, false, model.RoadStreet); ok {
		t.Fatal("removing a road from a roadless cell must be rejected")
	}
}

func TestStartStopDrains(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 10, 5
	cfg.SpawnRate = 0
	cfg.TickMillis = 1
	e := newEngineFixture(t, cfg)

	events, stop, wait := e.Start()
	for ev := range events {
		if _, ok := ev.(TickEvent); ok {
			break
		}
	}
	stop()
	stop() // idempotent
	wait()

	// channel is closed once the loop exits
	for range events {
	}
}

func TestSnapshotReflectsState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 10, 5
	cfg.SpawnRate = 1
	cfg.MaxVehicles = 4
	e := newEngineFixture(t, cfg)

	for i := 0; i < 10; i++ {
		e.Advance()
	}
	s := e.Snapshot()
	if s.Tick != 10 {
		t.Fatalf("snapshot tick %d, want 10", s.Tick)
	}
	if len(s.Vehicles) != e.Traffic.VehicleCount() {
		t.Fatalf("snapshot vehicles %d, live %d", len(s.Vehicles), e.Traffic.VehicleCount())
	}
	if s.Nodes != e.Graph.NodeCount() {
		t.Fatalf("snapshot nodes %d, graph %d", s.Nodes, e.Graph.NodeCount())
	}
}

func TestEngineViewsMatchState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 10, 5
	cfg.SpawnRate = 1
	cfg.MaxVehicles = 4
	e := newEngineFixture(t, cfg)

	for i := 0; i < 5; i++ {
		e.Advance()
	}
	if got := len(e.VehicleList()); got != e.Traffic.VehicleCount() {
		t.Fatalf("vehicle view %d, live %d", got, e.Traffic.VehicleCount())
	}
	nodes, edges, _ := e.NetworkView()
	if len(nodes) != e.Graph.NodeCount() || len(edges) != len(e.Graph.AllEdges()) {
		t.Fatalf("network view %d/%d, graph %d/%d",
			len(nodes), len(edges), e.Graph.NodeCount(), len(e.Graph.AllEdges()))
	}
	w, h, cells := e.RoadLayout()
	if w != 10 || h != 5 || len(cells) != e.Grid.RoadCount() {
		t.Fatalf("layout view %dx%d with %d cells, want 10x5 with %d", w, h, len(cells), e.Grid.RoadCount())
	}
}
