package driver

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/syuhei176/city-simulator/model"
	"github.com/syuhei176/city-simulator/sim"
)

// Options configures a headless batch run.
type Options struct {
	Ticks      int
	Citizens   int
	Employment float64
	ReportPath string
}

// Summary carries the end-of-run metrics of a batch simulation.
type Summary struct {
	Report      sim.ReportSummary
	JobsRevoked int
	FinalState  sim.Snapshot
}

// Run executes a fast, headless simulation: no HTTP, no event stream, no
// real-time pacing — the engine is ticked in a tight loop for the requested
// number of ticks. Semantics are identical to the served simulation since
// both go through Engine.Advance; only wall-clock pacing differs.
func Run(grid *model.Grid, cfg sim.Config, opt Options) (Summary, error) {
	if opt.Ticks <= 0 {
		return Summary{}, fmt.Errorf("batch: ticks must be positive, got %d", opt.Ticks)
	}
	if opt.Employment < 0 || opt.Employment > 1 {
		return Summary{}, fmt.Errorf("batch: employment must be in [0,1], got %v", opt.Employment)
	}

	pop := SeedPopulation(grid, cfg, opt.Citizens, opt.Employment)
	engine := sim.NewEngine(grid, pop, cfg)
	log.Printf("batch: %d ticks over %dx%d grid, %d citizens",
		opt.Ticks, grid.Width, grid.Height, pop.Size())

	for i := 0; i < opt.Ticks; i++ {
		engine.Advance()
	}

	snap := engine.Snapshot()
	sum := Summary{
		Report:      sim.Summarize(snap, pop.JobsRevoked),
		JobsRevoked: pop.JobsRevoked,
		FinalState:  snap,
	}
	if opt.ReportPath != "" {
		if _, err := sim.WriteCSVReport(opt.ReportPath, sum.Report); err != nil {
			return sum, fmt.Errorf("batch: write report: %w", err)
		}
	}
	return sum, nil
}

// SeedPopulation scatters citizens over walkable non-road ground, employing
// the requested fraction at random workplaces.
func SeedPopulation(grid *model.Grid, cfg sim.Config, count int, employment float64) *model.Population {
	rng := rand.New(rand.NewSource(cfg.Seed + 1))
	pop := model.NewPopulation()

	randomGround := func() model.CellKey {
		for {
			k := model.CellKey{X: rng.Intn(grid.Width), Y: rng.Intn(grid.Height)}
			if c := grid.Cell(k); c != nil && c.Walkable() && !c.Road {
				return k
			}
		}
	}

	for i := 1; i <= count; i++ {
		home := randomGround()
		pop.Add(&model.Citizen{ID: i, Home: &home})
		if rng.Float64() < employment {
			pop.Employ(i, randomGround())
		}
	}
	return pop
}
