package sim

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/syuhei176/city-simulator/model"
)

// Snapshot is a side-effect-free view of the simulation for stats and render
// collaborators. Everything in it is copied; mutating a snapshot never
// touches live state.
type Snapshot struct {
	Tick         int              `json:"tick"`
	Vehicles     []model.Vehicle  `json:"vehicles"`
	Commuters    []model.Commuter `json:"commuters"`
	CommuteState string           `json:"commute_state"`
	AvgSpeed     float64          `json:"avg_speed"`
	AvgDensity   float64          `json:"avg_density"`
	Nodes        int              `json:"nodes"`
	Edges        int              `json:"edges"`
	Components   int              `json:"components"`
	Arrivals     int              `json:"arrivals"`
	Spawned      int              `json:"spawned"`
	CyclesRun    int              `json:"cycles_run"`
}

// Snapshot captures the current simulation state under the engine lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	vehicles := e.Traffic.Vehicles()
	speeds := make([]float64, len(vehicles))
	for i, v := range vehicles {
		speeds[i] = v.Speed
	}
	avgSpeed := 0.0
	if len(speeds) > 0 {
		avgSpeed = stat.Mean(speeds, nil)
	}

	return Snapshot{
		Tick:         e.tick,
		Vehicles:     vehicles,
		Commuters:    e.Commutes.Commuters(),
		CommuteState: e.Commutes.State().String(),
		AvgSpeed:     avgSpeed,
		AvgDensity:   e.averageDensity(),
		Nodes:        e.Graph.NodeCount(),
		Edges:        len(e.Graph.AllEdges()),
		Components:   e.Graph.ComponentCount(),
		Arrivals:     e.Traffic.TotalArrivals,
		Spawned:      e.Traffic.TotalSpawned,
		CyclesRun:    e.Commutes.CyclesRun,
	}
}

// ReportSummary carries end-of-run metrics needed for reporting.
type ReportSummary struct {
	Ticks          int
	Spawned        int
	Arrivals       int
	CyclesRun      int
	JobsRevoked    int
	AvgSpeed       float64
	AvgCommuteTime float64
}

// Summarize collects a final summary from a snapshot and the commute history.
func Summarize(s Snapshot, jobsRevoked int) ReportSummary {
	elapsed := make([]float64, 0, len(s.Commuters))
	for _, c := range s.Commuters {
		if c.State == model.CommuterAtWork {
			elapsed = append(elapsed, float64(c.Elapsed))
		}
	}
	avgCommute := 0.0
	if len(elapsed) > 0 {
		avgCommute = stat.Mean(elapsed, nil)
	}
	return ReportSummary{
		Ticks:          s.Tick,
		Spawned:        s.Spawned,
		Arrivals:       s.Arrivals,
		CyclesRun:      s.CyclesRun,
		JobsRevoked:    jobsRevoked,
		AvgSpeed:       s.AvgSpeed,
		AvgCommuteTime: avgCommute,
	}
}

// WriteCSVReport writes a CSV report to the given path or directory.
// If reportPath is a directory, it creates a timestamped file inside.
// If reportPath is a file, a timestamp is suffixed before the extension.
func WriteCSVReport(reportPath string, sum ReportSummary) (string, error) {
	if reportPath == "" {
		return "", nil
	}
	ts := time.Now().Format("20060102-150405")
	outPath := reportPath
	if fi, err := os.Stat(outPath); err == nil && fi.IsDir() {
		outPath = filepath.Join(outPath, fmt.Sprintf("report-%s.csv", ts))
	} else {
		ext := filepath.Ext(outPath)
		base := outPath[:len(outPath)-len(ext)]
		outPath = fmt.Sprintf("%s-%s%s", base, ts, ext)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	round2 := func(x float64) float64 { return math.Round(x*100) / 100 }
	fmt.Fprintln(f, "ticks,vehicles_spawned,vehicle_arrivals,commute_cycles,jobs_revoked,avg_speed,avg_commute_ticks,timestamp")
	fmt.Fprintf(f, "%d,%d,%d,%d,%d,%.2f,%.2f,%s\n",
		sum.Ticks, sum.Spawned, sum.Arrivals, sum.CyclesRun, sum.JobsRevoked,
		round2(sum.AvgSpeed), round2(sum.AvgCommuteTime), ts)
	log.Printf("CSV report written to %s", outPath)
	return outPath, nil
}

// PrintConsoleReport prints a human-readable report to stdout.
func PrintConsoleReport(sum ReportSummary) {
	fmt.Println("=== Simulation Report ===")
	fmt.Printf("Ticks simulated: %d\n", sum.Ticks)
	fmt.Printf("Vehicles spawned: %d\n", sum.Spawned)
	fmt.Printf("Vehicle arrivals: %d\n", sum.Arrivals)
	fmt.Printf("Commute cycles: %d\n", sum.CyclesRun)
	fmt.Printf("Jobs revoked: %d\n", sum.JobsRevoked)
	fmt.Printf("Average speed: %.2f cells/tick\n", sum.AvgSpeed)
	fmt.Printf("Average commute: %.2f ticks\n", sum.AvgCommuteTime)
}
