package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/syuhei176/city-simulator/driver"
	"github.com/syuhei176/city-simulator/model"
	"github.com/syuhei176/city-simulator/server"
	"github.com/syuhei176/city-simulator/sim"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	gridPath := flag.String("grid", "", "path to a saved grid JSON file (optional; default generates a demo city)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	seed := flag.Int64("seed", 0, "RNG seed (overrides config; 0 keeps config value)")
	citizens := flag.Int("citizens", 300, "number of citizens to seed")
	employment := flag.Float64("employment", 0.8, "fraction of citizens employed at start")
	batchTicks := flag.Int("batch", 0, "run headless for N ticks and exit (0 = serve)")
	reportPath := flag.String("report", "", "CSV report path or directory written on shutdown")
	flag.Parse()

	cfg, err := sim.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	var grid *model.Grid
	if *gridPath != "" {
		f, err := os.Open(*gridPath)
		if err != nil {
			log.Fatalf("grid: %v", err)
		}
		grid, err = model.LoadGridFromReader(f)
		f.Close()
		if err != nil {
			log.Fatalf("grid: %v", err)
		}
	} else {
		grid = buildDemoCity(cfg)
	}

	if *batchTicks > 0 {
		sum, err := driver.Run(grid, cfg, driver.Options{
			Ticks:      *batchTicks,
			Citizens:   *citizens,
			Employment: *employment,
			ReportPath: *reportPath,
		})
		if err != nil {
			log.Fatalf("batch: %v", err)
		}
		sim.PrintConsoleReport(sum.Report)
		return
	}

	pop := driver.SeedPopulation(grid, cfg, *citizens, *employment)
	engine := sim.NewEngine(grid, pop, cfg)
	log.Printf("city ready: %dx%d grid, %d road cells, %d citizens",
		grid.Width, grid.Height, grid.RoadCount(), pop.Size())

	srv := server.New(engine)
	events, stopSim, waitSim := engine.Start()
	go func() {
		for ev := range events {
			srv.Broadcast(ev)
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down")
		stopSim()
		waitSim()
		sum := sim.Summarize(engine.Snapshot(), pop.JobsRevoked)
		if *reportPath != "" {
			if _, err := sim.WriteCSVReport(*reportPath, sum); err != nil {
				log.Printf("report: %v", err)
			}
		}
		sim.PrintConsoleReport(sum)
		os.Exit(0)
	}()

	log.Printf("HTTP server listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router()); err != nil {
		log.Fatalf("http: %v", err)
	}
}

// buildDemoCity lays out a deterministic starter city: a small lake, avenue
// rows, street columns, and one highway across the middle.
func buildDemoCity(cfg sim.Config) *model.Grid {
	grid := model.NewGrid(cfg.GridWidth, cfg.GridHeight)

	// Lake in the north-east quarter.
	for y := 2; y < cfg.GridHeight/5; y++ {
		for x := cfg.GridWidth * 3 / 4; x < cfg.GridWidth-2; x++ {
			grid.SetTerrain(model.CellKey{X: x, Y: y}, model.TerrainWater)
		}
	}

	for y := 4; y < cfg.GridHeight; y += 8 {
		for x := 0; x < cfg.GridWidth; x++ {
			grid.SetRoad(model.CellKey{X: x, Y: y}, model.RoadAvenue)
		}
	}
	for x := 3; x < cfg.GridWidth; x += 6 {
		for y := 0; y < cfg.GridHeight; y++ {
			grid.SetRoad(model.CellKey{X: x, Y: y}, model.RoadStreet)
		}
	}
	mid := cfg.GridHeight / 2
	for x := 0; x < cfg.GridWidth; x++ {
		grid.SetRoad(model.CellKey{X: x, Y: mid}, model.RoadHighway)
	}
	return grid
}
