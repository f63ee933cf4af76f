package sim

import (
	"github.com/tidwall/btree"

	"github.com/syuhei176/city-simulator/data"
	"github.com/syuhei176/city-simulator/metrics"
	"github.com/syuhei176/city-simulator/model"
)

// RoadNode is a graph vertex for one road cell. Nodes are created and
// destroyed wholesale on every rebuild and never mutated incrementally.
type RoadNode struct {
	Key          model.CellKey   `json:"key"`
	Position     model.Vec2      `json:"position"`
	Neighbors    []model.CellKey `json:"neighbors"`
	Intersection bool            `json:"intersection"`

	component int
}

// RoadEdge is a directed connection between two adjacent road nodes.
// Bidirectional roads are stored as two directed entries sharing the same
// base cost, so directional costs can diverge later without a format change.
type RoadEdge struct {
	From          model.CellKey `json:"from"`
	To            model.CellKey `json:"to"`
	Cost          float64       `json:"cost"`
	Lanes         int           `json:"lanes"`
	SpeedLimit    float64       `json:"speed_limit"`
	Bidirectional bool          `json:"bidirectional"`
}

type edgeKey struct {
	from, to model.CellKey
}

// RoadNetworkGraph derives a node/edge graph from the grid's road cells.
// Callers look nodes up by coordinate on every access, so a rebuild safely
// invalidates identities held elsewhere: stale lookups simply miss.
type RoadNetworkGraph struct {
	grid  *model.Grid
	nodes map[model.CellKey]*RoadNode
	edges map[edgeKey]*RoadEdge

	// ordered secondary index over nodes (row-major), so iteration order and
	// everything derived from it (component labels, spawn pools) is
	// deterministic under a fixed seed.
	index *btree.BTreeG[*RoadNode]

	edgeList   []*RoadEdge
	largest    []model.CellKey
	components int
	builtRoads int
}

func nodeLess(a, b *RoadNode) bool {
	if a.Key.Y != b.Key.Y {
		return a.Key.Y < b.Key.Y
	}
	return a.Key.X < b.Key.X
}

// NewRoadNetworkGraph returns an empty graph over the grid. Call Build before
// issuing queries.
func NewRoadNetworkGraph(grid *model.Grid) *RoadNetworkGraph {
	return &RoadNetworkGraph{
		grid:  grid,
		nodes: make(map[model.CellKey]*RoadNode),
		edges: make(map[edgeKey]*RoadEdge),
		index: btree.NewBTreeG[*RoadNode](nodeLess),
	}
}

// Build clears all graph state and reconstructs it from the grid's current
// road cells: one node per road cell, directed edge pairs for each cardinal
// road adjacency, then connected-component labeling. Must run to completion
// before any path query; the single-threaded tick loop guarantees that.
func (g *RoadNetworkGraph) Build() {
	g.nodes = make(map[model.CellKey]*RoadNode)
	g.edges = make(map[edgeKey]*RoadEdge)
	g.index = btree.NewBTreeG[*RoadNode](nodeLess)
	g.edgeList = g.edgeList[:0]
	g.largest = nil
	g.components = 0

	roadCells := g.grid.RoadCells()
	for _, c := range roadCells {
		n := &RoadNode{Key: c.Key, Position: c.Key.Vec(), component: -1}
		g.nodes[c.Key] = n
		g.index.Set(n)
	}
	g.builtRoads = len(g.nodes)

	for _, c := range roadCells {
		node := g.nodes[c.Key]
		for _, nb := range g.grid.Neighbors4(c.Key.X, c.Key.Y) {
			if !nb.Road {
				continue
			}
			node.Neighbors = append(node.Neighbors, nb.Key)
			g.addEdgePair(c, nb)
		}
		node.Intersection = len(node.Neighbors) >= 3
	}

	g.labelComponents()
	metrics.GraphRebuilds.Inc()
}

// addEdgePair inserts the directed edges from<->to unless already present
// (the reverse cell will attempt the same pair later in the build).
func (g *RoadNetworkGraph) addEdgePair(from, to *model.Cell) {
	if _, exists := g.edges[edgeKey{from.Key, to.Key}]; exists {
		return
	}
	base := (data.RoadTypeCost[from.RoadType] + data.RoadTypeCost[to.RoadType]) / 2
	// Congestion raises cost monotonically but never makes an edge
	// impassable; each direction reads its own from-cell density.
	fwd := &RoadEdge{
		From:          from.Key,
		To:            to.Key,
		Cost:          base * (1 + from.TrafficDensity/200),
		Lanes:         data.RoadLanes[from.RoadType],
		SpeedLimit:    data.RoadSpeedLimit[from.RoadType],
		Bidirectional: true,
	}
	rev := &RoadEdge{
		From:          to.Key,
		To:            from.Key,
		Cost:          base * (1 + to.TrafficDensity/200),
		Lanes:         data.RoadLanes[to.RoadType],
		SpeedLimit:    data.RoadSpeedLimit[to.RoadType],
		Bidirectional: true,
	}
	g.edges[edgeKey{from.Key, to.Key}] = fwd
	g.edges[edgeKey{to.Key, from.Key}] = rev
	g.edgeList = append(g.edgeList, fwd, rev)
}

// labelComponents runs an iterative depth-first labeling over all nodes in
// index order and records the largest component.
func (g *RoadNetworkGraph) labelComponents() {
	sizes := make(map[int]int)
	next := 0
	g.index.Scan(func(n *RoadNode) bool {
		if n.component >= 0 {
			return true
		}
		id := next
		next++
		stack := []*RoadNode{n}
		n.component = id
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sizes[id]++
			for _, nbKey := range cur.Neighbors {
				nb := g.nodes[nbKey]
				if nb != nil && nb.component < 0 {
					nb.component = id
					stack = append(stack, nb)
				}
			}
		}
		return true
	})
	g.components = next

	largestID, largestSize := -1, 0
	for id, size := range sizes {
		if size > largestSize || (size == largestSize && id < largestID) {
			largestID, largestSize = id, size
		}
	}
	g.largest = g.largest[:0]
	g.index.Scan(func(n *RoadNode) bool {
		if n.component == largestID {
			g.largest = append(g.largest, n.Key)
		}
		return true
	})
}

// NeedsRebuild is a cheap heuristic: the road-cell count no longer matches
// what the graph was built from. The engine rate-limits rebuilds rather than
// calling Build every tick.
func (g *RoadNetworkGraph) NeedsRebuild() bool {
	return g.grid.RoadCount() != g.builtRoads
}

// Node returns the node for a cell key, or nil when no road node exists there.
func (g *RoadNetworkGraph) Node(k model.CellKey) *RoadNode { return g.nodes[k] }

// Neighbors returns the neighbor keys of a node, nil for unknown nodes.
func (g *RoadNetworkGraph) Neighbors(k model.CellKey) []model.CellKey {
	if n := g.nodes[k]; n != nil {
		return n.Neighbors
	}
	return nil
}

// Edge returns the directed edge from->to or nil.
func (g *RoadNetworkGraph) Edge(from, to model.CellKey) *RoadEdge {
	return g.edges[edgeKey{from, to}]
}

// NodeCount returns the number of nodes in the graph.
func (g *RoadNetworkGraph) NodeCount() int { return len(g.nodes) }

// ComponentCount returns how many connected components the last Build found.
func (g *RoadNetworkGraph) ComponentCount() int { return g.components }

// ConnectedNodes returns the keys of the largest connected component, the
// pool spawners draw from so vehicles never start stranded in a fragment.
func (g *RoadNetworkGraph) ConnectedNodes() []model.CellKey {
	out := make([]model.CellKey, len(g.largest))
	copy(out, g.largest)
	return out
}

// AllNodes returns every node in row-major order, disconnected fragments
// included. Renderers and exhaustive queries use this, spawners must not.
func (g *RoadNetworkGraph) AllNodes() []*RoadNode {
	out := make([]*RoadNode, 0, g.index.Len())
	g.index.Scan(func(n *RoadNode) bool {
		out = append(out, n)
		return true
	})
	return out
}

// AllEdges returns every directed edge in build order.
func (g *RoadNetworkGraph) AllEdges() []*RoadEdge {
	out := make([]*RoadEdge, len(g.edgeList))
	copy(out, g.edgeList)
	return out
}
