package data

import "github.com/syuhei176/city-simulator/model"

// RoadTypeCost maps a road class to its base traversal cost per cell.
// Lower is faster; highways are the cheapest to cross, local streets the
// most expensive of the road classes.
var RoadTypeCost = map[model.RoadType]float64{
	model.RoadStreet:  10,
	model.RoadAvenue:  7,
	model.RoadHighway: 4,
}

// WalkCost is the per-cell cost of crossing ground with no road on it.
// It sits well above every road class so grid routes prefer roads whenever
// one is available.
const WalkCost = 25.0

// RoadSpeedLimit maps a road class to its speed limit in cells per tick.
var RoadSpeedLimit = map[model.RoadType]float64{
	model.RoadStreet:  1.0,
	model.RoadAvenue:  1.5,
	model.RoadHighway: 2.5,
}

// RoadLanes maps a road class to its lane count per direction.
var RoadLanes = map[model.RoadType]int{
	model.RoadStreet:  1,
	model.RoadAvenue:  2,
	model.RoadHighway: 3,
}

// CellCost returns the traversal cost of a single cell: its road class cost
// for roads, WalkCost otherwise.
func CellCost(c *model.Cell) float64 {
	if c == nil {
		return WalkCost
	}
	if c.Road {
		return RoadTypeCost[c.RoadType]
	}
	return WalkCost
}
