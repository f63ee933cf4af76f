package sim

import (
	"sort"

	"github.com/syuhei176/city-simulator/model"
)

// defaultLightPeriod is the tick count between phase flips.
const defaultLightPeriod = 10

// LightPhase is a traffic signal phase at an intersection.
type LightPhase int

const (
	LightNorthSouth LightPhase = iota
	LightEastWest
)

func (p LightPhase) String() string {
	if p == LightEastWest {
		return "east_west"
	}
	return "north_south"
}

// LightState pairs an intersection with its current phase.
type LightState struct {
	Key   model.CellKey `json:"key"`
	Phase LightPhase    `json:"phase"`
}

// TrafficLights keeps one signal per intersection node, flipping every phase
// on a shared fixed-period clock. The phase is published to render and stats
// collaborators; vehicle kinematics does not gate on it yet.
type TrafficLights struct {
	period int
	ticks  int
	phase  map[model.CellKey]LightPhase
}

// NewTrafficLights returns an empty light set. period <= 0 selects the
// default flip period.
func NewTrafficLights(period int) *TrafficLights {
	if period <= 0 {
		period = defaultLightPeriod
	}
	return &TrafficLights{period: period, phase: make(map[model.CellKey]LightPhase)}
}

// Sync reconciles the light set with the graph's current intersections: new
// intersections get a north-south signal, lights at vanished intersections
// are dropped, and surviving lights keep their phase across rebuilds.
func (tl *TrafficLights) Sync(graph *RoadNetworkGraph) {
	seen := make(map[model.CellKey]bool)
	for _, n := range graph.AllNodes() {
		if !n.Intersection {
			continue
		}
		seen[n.Key] = true
		if _, ok := tl.phase[n.Key]; !ok {
			tl.phase[n.Key] = LightNorthSouth
		}
	}
	for k := range tl.phase {
		if !seen[k] {
			delete(tl.phase, k)
		}
	}
}

// Step advances the shared clock, flipping every phase once per period.
func (tl *TrafficLights) Step() {
	tl.ticks++
	if tl.ticks < tl.period {
		return
	}
	tl.ticks = 0
	for k, p := range tl.phase {
		if p == LightNorthSouth {
			tl.phase[k] = LightEastWest
		} else {
			tl.phase[k] = LightNorthSouth
		}
	}
}

// Phase returns the signal phase at an intersection.
func (tl *TrafficLights) Phase(k model.CellKey) (LightPhase, bool) {
	p, ok := tl.phase[k]
	return p, ok
}

// Len returns the number of signals.
func (tl *TrafficLights) Len() int { return len(tl.phase) }

// States returns every signal in row-major order.
func (tl *TrafficLights) States() []LightState {
	out := make([]LightState, 0, len(tl.phase))
	for k, p := range tl.phase {
		out = append(out, LightState{Key: k, Phase: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Y != out[j].Key.Y {
			return out[i].Key.Y < out[j].Key.Y
		}
		return out[i].Key.X < out[j].Key.X
	})
	return out
}
