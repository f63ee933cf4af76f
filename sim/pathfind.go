package sim

import (
	"log"

	"github.com/syuhei176/city-simulator/metrics"
	"github.com/syuhei176/city-simulator/model"
)

// defaultMaxSearchIterations bounds any single A* query. Large enough for any
// path on a realistic map, small enough to terminate fast on degenerate ones.
const defaultMaxSearchIterations = 10000

// PathFinder runs A* over the road network graph. Edge costs were computed at
// the last graph rebuild, so routes reflect congestion as of that rebuild;
// the result is heuristic, not guaranteed globally optimal in real time.
type PathFinder struct {
	graph   *RoadNetworkGraph
	maxIter int
}

// NewPathFinder returns a pathfinder over the given graph.
func NewPathFinder(graph *RoadNetworkGraph) *PathFinder {
	return &PathFinder{graph: graph, maxIter: defaultMaxSearchIterations}
}

// FindPath routes between two world positions. It fails closed: when either
// position does not sit on a road node the sentinel no-path result is
// returned, never a partial route.
func (pf *PathFinder) FindPath(start, end model.Vec2) model.Path {
	return pf.FindPathKeys(start.Key(), end.Key())
}

// FindPathKeys routes between two node keys.
func (pf *PathFinder) FindPathKeys(start, end model.CellKey) model.Path {
	if pf.graph.Node(start) == nil || pf.graph.Node(end) == nil {
		return model.NoPath()
	}

	cells, cost, ok, exhausted := runAStar(search{
		start:     start,
		goal:      end,
		neighbors: pf.graph.Neighbors,
		stepCost: func(from, to model.CellKey) float64 {
			if e := pf.graph.Edge(from, to); e != nil {
				return e.Cost
			}
			// neighbor lists and edges are rebuilt together; missing edges
			// would be a build defect, so price them prohibitively instead
			// of panicking mid-simulation
			return 1e9
		},
		heuristic: func(from, to model.CellKey) float64 {
			return from.Manhattan(to)
		},
		maxIterations: pf.maxIter,
	})
	if exhausted {
		metrics.SearchExhaustions.Inc()
		log.Printf("pathfinder: search watchdog tripped routing %v -> %v", start, end)
	}
	if !ok {
		return model.NoPath()
	}
	return model.Path{
		Cells:    cells,
		Cost:     cost,
		Distance: pathDistance(cells),
		Exists:   true,
	}
}
