package sim

import "github.com/syuhei176/city-simulator/model"

// Event is a marker for all simulation events emitted by the engine.
type Event interface{ isEvent() }

// TickEvent summarizes one completed simulation tick.
type TickEvent struct {
	Tick       int     `json:"tick"`
	Vehicles   int     `json:"vehicles"`
	AvgSpeed   float64 `json:"avg_speed"`
	AvgDensity float64 `json:"avg_density"`
}

func (TickEvent) isEvent() {}

// VehicleAddEvent indicates a vehicle spawned onto the network.
type VehicleAddEvent struct {
	VehicleID int           `json:"vehicle_id"`
	Type      string        `json:"type"`
	From      model.CellKey `json:"from"`
	To        model.CellKey `json:"to"`
}

func (VehicleAddEvent) isEvent() {}

// VehicleArriveEvent indicates a vehicle completed its path and was removed.
type VehicleArriveEvent struct {
	VehicleID   int     `json:"vehicle_id"`
	TravelTicks int     `json:"travel_ticks"`
	WaitTicks   int     `json:"wait_ticks"`
	Distance    float64 `json:"distance"`
}

func (VehicleArriveEvent) isEvent() {}

// RebuildEvent reports a road network graph reconstruction.
type RebuildEvent struct {
	Nodes      int `json:"nodes"`
	Edges      int `json:"edges"`
	Components int `json:"components"`
}

func (RebuildEvent) isEvent() {}

// RoadEditEvent reports an external road placement or removal.
type RoadEditEvent struct {
	Key    model.CellKey `json:"key"`
	Placed bool          `json:"placed"`
}

func (RoadEditEvent) isEvent() {}

// CommuteStartEvent signals the start of a daily commute cycle.
type CommuteStartEvent struct {
	CycleID   string `json:"cycle_id"`
	Commuters int    `json:"commuters"`
	NoPath    int    `json:"no_path"` // failed immediately, before any tick
}

func (CommuteStartEvent) isEvent() {}

// CommuteEndEvent signals the end of a daily commute cycle.
type CommuteEndEvent struct {
	CycleID string `json:"cycle_id"`
	AtWork  int    `json:"at_work"`
	Failed  int    `json:"failed"`
	Ticks   int    `json:"ticks"`
}

func (CommuteEndEvent) isEvent() {}

// JobRevokedEvent reports the employment feedback for one failed commuter.
type JobRevokedEvent struct {
	CycleID   string `json:"cycle_id"`
	CitizenID int    `json:"citizen_id"`
}

func (JobRevokedEvent) isEvent() {}
