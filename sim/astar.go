package sim

import (
	"container/heap"

	"github.com/syuhei176/city-simulator/model"
)

// search describes one A* query over an arbitrary cell space. The same driver
// serves both the graph pathfinder (neighbors come from road edges) and the
// grid pathfinder (neighbors are walkable cardinal cells); only the closures
// differ.
type search struct {
	start, goal model.CellKey
	neighbors   func(model.CellKey) []model.CellKey
	stepCost    func(from, to model.CellKey) float64
	heuristic   func(from, to model.CellKey) float64
	// maxIterations is a watchdog: when the open set churns past it the
	// search gives up and reports no path, guaranteeing termination on
	// degenerate topologies. <=0 means unbounded.
	maxIterations int
}

// runAStar executes the search and returns the cell sequence from start to
// goal with its accumulated cost. ok is false when no admissible path exists
// or the watchdog tripped; exhausted tells the two apart.
func runAStar(s search) (cells []model.CellKey, cost float64, ok, exhausted bool) {
	if s.start == s.goal {
		return []model.CellKey{s.start}, 0, true, false
	}

	gScore := map[model.CellKey]float64{s.start: 0}
	cameFrom := make(map[model.CellKey]model.CellKey)
	closed := make(map[model.CellKey]bool)

	pq := &openSet{}
	heap.Init(pq)
	pq.push(s.start, s.heuristic(s.start, s.goal))

	iterations := 0
	for pq.Len() > 0 {
		iterations++
		if s.maxIterations > 0 && iterations > s.maxIterations {
			return nil, 0, false, true
		}
		current := heap.Pop(pq).(*openItem).cell
		if current == s.goal {
			return reconstruct(cameFrom, current), gScore[current], true, false
		}
		if closed[current] {
			continue
		}
		closed[current] = true

		for _, nb := range s.neighbors(current) {
			if closed[nb] {
				continue
			}
			tentative := gScore[current] + s.stepCost(current, nb)
			if old, seen := gScore[nb]; !seen || tentative < old {
				cameFrom[nb] = current
				gScore[nb] = tentative
				pq.push(nb, tentative+s.heuristic(nb, s.goal))
			}
		}
	}
	return nil, 0, false, false
}

func reconstruct(cameFrom map[model.CellKey]model.CellKey, current model.CellKey) []model.CellKey {
	path := []model.CellKey{current}
	for {
		prev, seen := cameFrom[current]
		if !seen {
			break
		}
		current = prev
		path = append(path, current)
	}
	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// pathDistance sums the straight-line lengths of consecutive segments. It is
// independent of traversal cost and used for rendering and statistics.
func pathDistance(cells []model.CellKey) float64 {
	d := 0.0
	for i := 1; i < len(cells); i++ {
		d += cells[i-1].Euclid(cells[i])
	}
	return d
}

type openItem struct {
	cell     model.CellKey
	priority float64
	seq      int // insertion order; breaks f-score ties FIFO
}

type openSet struct {
	items []*openItem
	seq   int
}

func (o *openSet) push(cell model.CellKey, priority float64) {
	o.seq++
	heap.Push(o, &openItem{cell: cell, priority: priority, seq: o.seq})
}

func (o openSet) Len() int { return len(o.items) }

func (o openSet) Less(i, j int) bool {
	if o.items[i].priority != o.items[j].priority {
		return o.items[i].priority < o.items[j].priority
	}
	return o.items[i].seq < o.items[j].seq
}

func (o openSet) Swap(i, j int) { o.items[i], o.items[j] = o.items[j], o.items[i] }

func (o *openSet) Push(x interface{}) { o.items = append(o.items, x.(*openItem)) }

func (o *openSet) Pop() interface{} {
	old := o.items
	n := len(old)
	item := old[n-1]
	o.items = old[:n-1]
	return item
}
