package sim

import (
	"log"

	"github.com/syuhei176/city-simulator/data"
	"github.com/syuhei176/city-simulator/metrics"
	"github.com/syuhei176/city-simulator/model"
)

// DefaultPathCacheCapacity bounds the grid path cache.
const DefaultPathCacheCapacity = 256

type cacheKey struct {
	from, to model.CellKey
}

// GridPathFinder runs A* directly over grid cells, no graph required. Every
// walkable cell is passable, not just roads, so citizens can route from a
// home that is not itself on a road; the class-based step cost still makes
// routes prefer roads wherever they exist.
//
// Results are memoized in a bounded FIFO cache. Cached entries never expire
// on their own: the owner must call ClearCache whenever the grid's road
// layout changes, or stale "path exists" results will be served. That is a
// correctness contract, not an optimization detail.
type GridPathFinder struct {
	grid    *model.Grid
	cache   map[cacheKey]model.Path
	order   []cacheKey
	cap     int
	maxIter int
}

// NewGridPathFinder returns a grid pathfinder with the given cache capacity
// (<=0 selects DefaultPathCacheCapacity).
func NewGridPathFinder(grid *model.Grid, cacheCapacity int) *GridPathFinder {
	if cacheCapacity <= 0 {
		cacheCapacity = DefaultPathCacheCapacity
	}
	return &GridPathFinder{
		grid:    grid,
		cache:   make(map[cacheKey]model.Path),
		cap:     cacheCapacity,
		maxIter: defaultMaxSearchIterations,
	}
}

// FindPath routes between two cells. Off-grid or water endpoints fail closed
// with the sentinel no-path result.
func (gp *GridPathFinder) FindPath(start, end model.CellKey) model.Path {
	sc, ec := gp.grid.Cell(start), gp.grid.Cell(end)
	if sc == nil || ec == nil || !sc.Walkable() || !ec.Walkable() {
		return model.NoPath()
	}

	key := cacheKey{start, end}
	if p, hit := gp.cache[key]; hit {
		metrics.PathCacheHits.Inc()
		return p
	}
	metrics.PathCacheMisses.Inc()

	cells, cost, ok, exhausted := runAStar(search{
		start:         start,
		goal:          end,
		neighbors:     gp.walkableNeighbors,
		stepCost:      gp.stepCost,
		heuristic:     model.CellKey.Manhattan,
		maxIterations: gp.maxIter,
	})
	if exhausted {
		metrics.SearchExhaustions.Inc()
		log.Printf("gridpath: search watchdog tripped routing %v -> %v", start, end)
	}

	p := model.NoPath()
	if ok {
		p = model.Path{
			Cells:    cells,
			Cost:     cost,
			Distance: pathDistance(cells),
			Exists:   true,
		}
	}
	gp.store(key, p)
	return p
}

func (gp *GridPathFinder) walkableNeighbors(k model.CellKey) []model.CellKey {
	out := make([]model.CellKey, 0, 4)
	for _, c := range gp.grid.Neighbors4(k.X, k.Y) {
		if c.Walkable() {
			out = append(out, c.Key)
		}
	}
	return out
}

// stepCost prices one cardinal step. Road to road is cheapest, road to
// non-road averages road and walking cost, walking both sides is the most
// expensive; a mild congestion bias steers pedestrian flows off saturated
// blocks without dominating the class cost.
func (gp *GridPathFinder) stepCost(from, to model.CellKey) float64 {
	fc, tc := gp.grid.Cell(from), gp.grid.Cell(to)
	base := (data.CellCost(fc) + data.CellCost(tc)) / 2
	if fc != nil {
		base *= 1 + fc.TrafficDensity/400
	}
	return base
}

// store inserts into the cache, evicting the oldest key once full.
func (gp *GridPathFinder) store(key cacheKey, p model.Path) {
	if _, exists := gp.cache[key]; !exists {
		for len(gp.cache) >= gp.cap && len(gp.order) > 0 {
			oldest := gp.order[0]
			gp.order = gp.order[1:]
			delete(gp.cache, oldest)
		}
		gp.order = append(gp.order, key)
	}
	gp.cache[key] = p
}

// ClearCache drops every memoized path. Call on any road-layout change.
func (gp *GridPathFinder) ClearCache() {
	gp.cache = make(map[cacheKey]model.Path)
	gp.order = gp.order[:0]
}

// CacheLen returns the number of cached paths.
func (gp *GridPathFinder) CacheLen() int { return len(gp.cache) }
