package sim

import (
	"math/rand"

	"github.com/syuhei176/city-simulator/metrics"
	"github.com/syuhei176/city-simulator/model"
)

// Kinematics tuning. Distances and speeds are in grid cells / cells per tick.
const (
	waypointEpsilon = 0.1
	minSafeDistance = 0.8
	accelStep       = 0.05
	softDecelStep   = 0.05
	decelStep       = 0.1
	hardDecelStep   = 0.3

	// vehiclesPerFullCell co-located vehicles saturate a cell at 100% density.
	vehiclesPerFullCell = 5

	heavyDensity = 80.0
	lightDensity = 50.0
)

// TrafficSimulator owns the vehicle population: it spawns vehicles into the
// largest connected component, advances their kinematics once per tick, and
// writes vehicle occupancy back into the grid's per-cell traffic density.
// Density written this tick feeds vehicle speed and edge costs next tick, a
// one-tick-delayed feedback loop.
type TrafficSimulator struct {
	grid  *model.Grid
	graph *RoadNetworkGraph
	paths *PathFinder
	rng   *rand.Rand
	ids   *IDSource
	cfg   Config

	vehicles []*model.Vehicle

	TotalSpawned  int
	TotalArrivals int
}

// NewTrafficSimulator wires the traffic simulator to its collaborators.
func NewTrafficSimulator(grid *model.Grid, graph *RoadNetworkGraph, paths *PathFinder, ids *IDSource, rng *rand.Rand, cfg Config) *TrafficSimulator {
	return &TrafficSimulator{
		grid:  grid,
		graph: graph,
		paths: paths,
		rng:   rng,
		ids:   ids,
		cfg:   cfg,
	}
}

// Vehicles returns a snapshot copy of the live vehicle list.
func (ts *TrafficSimulator) Vehicles() []model.Vehicle {
	out := make([]model.Vehicle, len(ts.vehicles))
	for i, v := range ts.vehicles {
		out[i] = *v
	}
	return out
}

// VehicleCount returns the live population size.
func (ts *TrafficSimulator) VehicleCount() int { return len(ts.vehicles) }

// Step advances the traffic simulation one tick: move every vehicle, remove
// arrivals, maybe spawn, then recompute traffic density from the new
// occupancy. Returned events describe what happened this tick.
func (ts *TrafficSimulator) Step() []Event {
	var events []Event

	for _, v := range ts.vehicles {
		ts.advance(v)
	}

	// Remove arrivals in place, keeping spawn order for the survivors.
	keep := ts.vehicles[:0]
	for _, v := range ts.vehicles {
		if v.State == model.VehicleArrived {
			ts.TotalArrivals++
			metrics.VehicleArrivals.Inc()
			events = append(events, VehicleArriveEvent{
				VehicleID:   v.ID,
				TravelTicks: v.TravelTicks,
				WaitTicks:   v.WaitTicks,
				Distance:    v.Distance,
			})
			continue
		}
		keep = append(keep, v)
	}
	ts.vehicles = keep

	if ev, spawned := ts.maybeSpawn(); spawned {
		events = append(events, ev)
	}

	ts.recomputeDensity()
	metrics.ActiveVehicles.Set(float64(len(ts.vehicles)))
	return events
}

// advance applies one tick of kinematics: proportional speed control from the
// previous tick's density and the nearest leader vehicle, then movement
// toward the current waypoint with snap-to-node on arrival.
func (ts *TrafficSimulator) advance(v *model.Vehicle) {
	if v.State == model.VehicleArrived {
		return
	}
	v.TravelTicks++

	switch {
	case ts.leaderAhead(v):
		v.SetSpeed(v.Speed - hardDecelStep)
		v.State = model.VehicleStopped
	default:
		density := 0.0
		if c := ts.grid.Cell(v.CurrentCell()); c != nil {
			density = c.TrafficDensity
		}
		switch {
		case density > heavyDensity:
			v.SetSpeed(v.Speed - decelStep)
		case density > lightDensity:
			v.SetSpeed(v.Speed - softDecelStep)
		default:
			v.SetSpeed(v.Speed + accelStep)
		}
		if v.Speed == 0 {
			v.State = model.VehicleWaiting
		} else {
			v.State = model.VehicleMoving
		}
	}

	if v.Speed == 0 {
		v.WaitTicks++
		return
	}

	// Move toward the waypoint, never overshooting it this tick.
	toTarget := v.Target.Sub(v.Position)
	dist := toTarget.Len()
	step := v.Speed
	if step > dist {
		step = dist
	}
	dir := toTarget.Norm()
	v.Position = model.Vec2{X: v.Position.X + dir.X*step, Y: v.Position.Y + dir.Y*step}
	v.Distance += step

	if v.AtTarget(waypointEpsilon) {
		ts.snapToNext(v)
	}
}

// snapToNext pins the vehicle onto its waypoint and selects the next path
// node, or marks it arrived on the last one.
func (ts *TrafficSimulator) snapToNext(v *model.Vehicle) {
	v.Position = v.Target
	v.PathIndex++
	if v.PathIndex >= v.Path.Len() {
		v.State = model.VehicleArrived
		return
	}
	v.Target = v.Path.Cells[v.PathIndex].Vec()
}

// leaderAhead reports whether another vehicle sits within the minimum safe
// distance in the direction of travel (dot-product check against heading).
func (ts *TrafficSimulator) leaderAhead(v *model.Vehicle) bool {
	heading := v.Heading()
	if heading.Len() == 0 {
		return false
	}
	for _, other := range ts.vehicles {
		if other == v || other.State == model.VehicleArrived {
			continue
		}
		offset := other.Position.Sub(v.Position)
		d := offset.Len()
		if d == 0 || d > minSafeDistance {
			continue
		}
		if offset.Norm().Dot(heading) > 0 {
			return true
		}
	}
	return false
}

// maybeSpawn rolls the per-tick spawn probability and, when it hits, places a
// new vehicle on a random route inside the largest connected component.
func (ts *TrafficSimulator) maybeSpawn() (Event, bool) {
	if len(ts.vehicles) >= ts.cfg.MaxVehicles {
		return nil, false
	}
	if ts.rng.Float64() >= ts.cfg.SpawnRate {
		return nil, false
	}
	pool := ts.graph.ConnectedNodes()
	if len(pool) < 2 {
		return nil, false
	}
	start := pool[ts.rng.Intn(len(pool))]
	end := pool[ts.rng.Intn(len(pool))]
	for tries := 0; end == start && tries < 8; tries++ {
		end = pool[ts.rng.Intn(len(pool))]
	}
	if end == start {
		return nil, false
	}
	path := ts.paths.FindPathKeys(start, end)
	if !path.Exists || path.Len() < 2 {
		// both endpoints are in the same component, so this only happens
		// when the watchdog trips on a pathological layout
		return nil, false
	}

	v := &model.Vehicle{
		ID:        ts.ids.Next(),
		Type:      ts.rollType(),
		Position:  start.Vec(),
		Target:    path.Cells[1].Vec(),
		Path:      path,
		PathIndex: 1,
		State:     model.VehicleMoving,
	}
	v.SetSpeed(v.MaxSpeed() / 2)
	ts.vehicles = append(ts.vehicles, v)
	ts.TotalSpawned++
	metrics.VehiclesSpawned.Inc()
	return VehicleAddEvent{VehicleID: v.ID, Type: v.Type.Name, From: start, To: end}, true
}

// rollType picks a vehicle category: mostly cars, some buses, few trucks.
func (ts *TrafficSimulator) rollType() *model.VehicleType {
	r := ts.rng.Float64()
	switch {
	case r < 0.7:
		return model.TypeCar
	case r < 0.9:
		return model.TypeBus
	default:
		return model.TypeTruck
	}
}

// Inject places a prepared vehicle into the population; tests and scripted
// scenarios use it instead of the random spawner.
func (ts *TrafficSimulator) Inject(v *model.Vehicle) {
	if v == nil || !v.Path.Exists || v.Path.Len() == 0 {
		return
	}
	ts.vehicles = append(ts.vehicles, v)
	ts.TotalSpawned++
	metrics.VehiclesSpawned.Inc()
}

// recomputeDensity rebuilds per-road-cell traffic density from vehicle
// occupancy, then smooths each road cell with its 8-connected road neighbors
// (itself included) to avoid sharp block-to-block discontinuities. The raw
// counts buffer keeps the write-back from feeding into its own smoothing.
func (ts *TrafficSimulator) recomputeDensity() {
	occupancy := make(map[model.CellKey]int)
	for _, v := range ts.vehicles {
		occupancy[v.CurrentCell()]++
	}

	roadCells := ts.grid.RoadCells()
	raw := make(map[model.CellKey]float64, len(roadCells))
	for _, c := range roadCells {
		d := float64(occupancy[c.Key]) / vehiclesPerFullCell * 100
		if d > 100 {
			d = 100
		}
		raw[c.Key] = d
	}

	for _, c := range roadCells {
		sum := raw[c.Key]
		n := 1
		for _, nb := range ts.grid.Neighbors8(c.Key.X, c.Key.Y) {
			if nb.Road {
				sum += raw[nb.Key]
				n++
			}
		}
		c.SetTrafficDensity(sum / float64(n))
	}
}

// AverageSpeed returns the mean speed of the live population, 0 when empty.
func (ts *TrafficSimulator) AverageSpeed() float64 {
	if len(ts.vehicles) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range ts.vehicles {
		sum += v.Speed
	}
	return sum / float64(len(ts.vehicles))
}
