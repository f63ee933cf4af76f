package sim

import (
	"log"

	"github.com/google/uuid"

	"github.com/syuhei176/city-simulator/metrics"
	"github.com/syuhei176/city-simulator/model"
)

// CitizenDirectory is the narrow slice of the population model the commute
// simulator consumes: who commutes today, and the job-revocation feedback
// channel for commutes that fail.
type CitizenDirectory interface {
	EmployedCommuters() []*model.Citizen
	RevokeJob(citizenID int)
}

// CycleState is the commute simulator's per-day state machine.
type CycleState int

const (
	CycleIdle CycleState = iota
	CycleSimulating
)

func (s CycleState) String() string {
	if s == CycleSimulating {
		return "simulating"
	}
	return "idle"
}

// CommuteSimulator runs the daily mass commute: once per configured interval
// it builds one commuter per employed citizen, resolves grid paths, then
// advances all commuters synchronously every tick until each one has either
// reached work or failed. Failures are reported to the citizen directory
// exactly once per cycle; that call is the feedback channel from traffic
// congestion into the employment model.
type CommuteSimulator struct {
	grid      *model.Grid
	gridPaths *GridPathFinder
	citizens  CitizenDirectory
	cfg       Config

	state      CycleState
	commuters  []*model.Commuter
	cycleID    string
	cycleTicks int
	sinceLast  int

	CyclesRun int
}

// NewCommuteSimulator wires the commute simulator to its collaborators.
func NewCommuteSimulator(grid *model.Grid, gridPaths *GridPathFinder, citizens CitizenDirectory, cfg Config) *CommuteSimulator {
	return &CommuteSimulator{
		grid:      grid,
		gridPaths: gridPaths,
		citizens:  citizens,
		cfg:       cfg,
	}
}

// State returns the current cycle state.
func (cs *CommuteSimulator) State() CycleState { return cs.state }

// Commuters returns a snapshot copy of the current cycle's commuters.
func (cs *CommuteSimulator) Commuters() []model.Commuter {
	out := make([]model.Commuter, len(cs.commuters))
	for i, c := range cs.commuters {
		out[i] = *c
	}
	return out
}

// Step advances the simulator one tick: while idle it counts down to the next
// daily cycle, while simulating it advances every active commuter.
func (cs *CommuteSimulator) Step() []Event {
	if cs.state == CycleIdle {
		cs.sinceLast++
		if cs.sinceLast >= cs.cfg.CommuteInterval {
			return cs.startCycle()
		}
		return nil
	}
	return cs.advanceCycle()
}

// StartNow forces a cycle to begin on the next Step regardless of the
// interval. No-op while a cycle is running.
func (cs *CommuteSimulator) StartNow() {
	if cs.state == CycleIdle {
		cs.sinceLast = cs.cfg.CommuteInterval
	}
}

// startCycle builds the day's commuters. Citizens with no resolvable path
// fail immediately without consuming a tick.
func (cs *CommuteSimulator) startCycle() []Event {
	cs.state = CycleSimulating
	cs.cycleID = uuid.New().String()
	cs.cycleTicks = 0
	cs.sinceLast = 0
	cs.commuters = cs.commuters[:0]

	noPath := 0
	for _, cit := range cs.citizens.EmployedCommuters() {
		c := &model.Commuter{
			CitizenID: cit.ID,
			Home:      *cit.Home,
			Work:      *cit.Work,
			Speed:     cs.cfg.CommuteSpeed,
			Budget:    cs.cfg.CommuteBudget,
		}
		c.Path = cs.gridPaths.FindPath(c.Home, c.Work)
		if !c.Path.Exists {
			c.State = model.CommuterFailed
			noPath++
		} else {
			c.State = model.Commuting
		}
		cs.commuters = append(cs.commuters, c)
	}

	events := []Event{CommuteStartEvent{CycleID: cs.cycleID, Commuters: len(cs.commuters), NoPath: noPath}}
	log.Printf("commute cycle %s started: %d commuters, %d with no path", cs.cycleID, len(cs.commuters), noPath)

	if cs.countCommuting() == 0 {
		events = append(events, cs.finishCycle()...)
	}
	return events
}

// advanceCycle moves every active commuter one tick. Speed is the configured
// base scaled down by how crowded the commuter's current directed edge is.
func (cs *CommuteSimulator) advanceCycle() []Event {
	cs.cycleTicks++
	occupancy := cs.edgeOccupancy()

	for _, c := range cs.commuters {
		if c.State != model.Commuting {
			continue
		}
		load := 0
		if from, to, ok := c.Segment(); ok {
			load = occupancy[edgeKey{from, to}]
		}
		c.Speed = cs.cfg.CommuteSpeed * cs.slowdown(load)
		c.Progress += c.Speed
		c.Elapsed++

		if c.Arrived() {
			c.State = model.CommuterAtWork
			continue
		}
		if c.Elapsed > c.Budget {
			c.State = model.CommuterFailed
		}
	}

	if cs.countCommuting() == 0 {
		return cs.finishCycle()
	}
	return nil
}

// slowdown maps directed-edge load to a speed factor: free flow below the
// threshold, capped slowdown at the ceiling, linear in between.
func (cs *CommuteSimulator) slowdown(load int) float64 {
	if load <= cs.cfg.CongestionThreshold {
		return 1
	}
	if load >= cs.cfg.CongestionCeiling {
		return 1 - cs.cfg.CongestionSlowdownCap
	}
	span := float64(cs.cfg.CongestionCeiling - cs.cfg.CongestionThreshold)
	return 1 - cs.cfg.CongestionSlowdownCap*float64(load-cs.cfg.CongestionThreshold)/span
}

// edgeOccupancy counts commuters per directed path edge, from the positions
// they held entering this tick.
func (cs *CommuteSimulator) edgeOccupancy() map[edgeKey]int {
	occ := make(map[edgeKey]int)
	for _, c := range cs.commuters {
		if c.State != model.Commuting {
			continue
		}
		if from, to, ok := c.Segment(); ok {
			occ[edgeKey{from, to}]++
		}
	}
	return occ
}

// finishCycle reports terminal failures to the citizen directory (exactly
// once per failed commuter) and returns to idle. Commuters do not persist
// across days.
func (cs *CommuteSimulator) finishCycle() []Event {
	atWork, failed := 0, 0
	var events []Event
	for _, c := range cs.commuters {
		switch c.State {
		case model.CommuterAtWork:
			atWork++
		case model.CommuterFailed:
			failed++
			cs.citizens.RevokeJob(c.CitizenID)
			metrics.CommuteFailures.Inc()
			metrics.JobsRevoked.Inc()
			events = append(events, JobRevokedEvent{CycleID: cs.cycleID, CitizenID: c.CitizenID})
		}
	}
	events = append(events, CommuteEndEvent{CycleID: cs.cycleID, AtWork: atWork, Failed: failed, Ticks: cs.cycleTicks})
	log.Printf("commute cycle %s finished after %d ticks: %d at work, %d failed", cs.cycleID, cs.cycleTicks, atWork, failed)

	cs.state = CycleIdle
	cs.CyclesRun++
	return events
}

func (cs *CommuteSimulator) countCommuting() int {
	n := 0
	for _, c := range cs.commuters {
		if c.State == model.Commuting {
			n++
		}
	}
	return n
}
