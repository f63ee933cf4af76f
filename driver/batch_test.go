package driver

import (
	"testing"

	"github.com/syuhei176/city-simulator/model"
	"github.com/syuhei176/city-simulator/sim"
)

func batchGrid(cfg sim.Config) *model.Grid {
	g := model.NewGrid(cfg.GridWidth, cfg.GridHeight)
	for x := 0; x < cfg.GridWidth; x++ {
		g.SetRoad(model.CellKey{X: x, Y: cfg.GridHeight / 2}, model.RoadAvenue)
	}
	return g
}

func TestRunRejectsBadOptions(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 16, 16

	if _, err := Run(batchGrid(cfg), cfg, Options{Ticks: 0}); err == nil {
		t.Fatal("zero ticks must error")
	}
	if _, err := Run(batchGrid(cfg), cfg, Options{Ticks: 10, Employment: 1.5}); err == nil {
		t.Fatal("employment above 1 must error")
	}
}

func TestRunCompletesAllTicks(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 16, 16
	cfg.CommuteInterval = 20
	cfg.SpawnRate = 0.5
	cfg.MaxVehicles = 10

	sum, err := Run(batchGrid(cfg), cfg, Options{Ticks: 100, Citizens: 20, Employment: 0.5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.FinalState.Tick != 100 {
		t.Fatalf("final tick %d, want 100", sum.FinalState.Tick)
	}
	if sum.Report.Ticks != 100 {
		t.Fatalf("report ticks %d, want 100", sum.Report.Ticks)
	}
	if sum.FinalState.Spawned == 0 {
		t.Fatal("no vehicles spawned over 100 ticks at rate 0.5")
	}
	if sum.FinalState.CyclesRun == 0 {
		t.Fatal("no commute cycles over 100 ticks at interval 20")
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 16, 16
	cfg.SpawnRate = 0.5
	cfg.MaxVehicles = 10
	opt := Options{Ticks: 50, Citizens: 10, Employment: 0.5}

	a, err := Run(batchGrid(cfg), cfg, opt)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(batchGrid(cfg), cfg, opt)
	if err != nil {
		t.Fatal(err)
	}
	if a.FinalState.Spawned != b.FinalState.Spawned ||
		a.FinalState.Arrivals != b.FinalState.Arrivals ||
		a.JobsRevoked != b.JobsRevoked {
		t.Fatalf("same seed diverged: %+v vs %+v", a.FinalState, b.FinalState)
	}
}

func TestSeedPopulation(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 16, 16
	g := batchGrid(cfg)

	pop := SeedPopulation(g, cfg, 50, 0.5)
	if pop.Size() != 50 {
		t.Fatalf("population size %d, want 50", pop.Size())
	}
	employed := pop.EmployedCommuters()
	if len(employed) == 0 || len(employed) == 50 {
		t.Fatalf("employment fraction 0.5 produced %d employed of 50", len(employed))
	}
	for _, c := range employed {
		for _, k := range []model.CellKey{*c.Home, *c.Work} {
			cell := g.Cell(k)
			if cell == nil || !cell.Walkable() || cell.Road {
				t.Fatalf("citizen %d placed on invalid cell %v", c.ID, k)
			}
		}
	}
}
