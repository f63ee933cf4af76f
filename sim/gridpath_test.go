package sim

import (
	"testing"

	"github.com/syuhei176/city-simulator/model"
)

// corridorGrid carves a single walkable road row at y=1 through open water.
func corridorGrid(width int) *model.Grid {
	g := model.NewGrid(width, 3)
	for x := 0; x < width; x++ {
		g.SetTerrain(model.CellKey{X: x, Y: 0}, model.TerrainWater)
		g.SetTerrain(model.CellKey{X: x, Y: 2}, model.TerrainWater)
		g.SetRoad(model.CellKey{X: x, Y: 1}, model.RoadStreet)
	}
	return g
}

func TestGridPathPrefersRoads(t *testing.T) {
	g := model.NewGrid(6, 5)
	// road detour along the top; direct route is open ground
	for x := 0; x <= 5; x++ {
		g.SetRoad(model.CellKey{X: x, Y: 0}, model.RoadStreet)
	}
	g.SetRoad(model.CellKey{X: 0, Y: 1}, model.RoadStreet)
	g.SetRoad(model.CellKey{X: 5, Y: 1}, model.RoadStreet)

	gp := NewGridPathFinder(g, DefaultPathCacheCapacity)
	p := gp.FindPath(model.CellKey{X: 0, Y: 1}, model.CellKey{X: 5, Y: 1})
	if !p.Exists {
		t.Fatal("expected a path")
	}
	for _, k := range p.Cells {
		if !g.Cell(k).Road {
			t.Fatalf("path left the road at %v: %v", k, p.Cells)
		}
	}
}

func TestGridPathWalksWhereNoRoad(t *testing.T) {
	g := model.NewGrid(4, 4)
	gp := NewGridPathFinder(g, DefaultPathCacheCapacity)

	p := gp.FindPath(model.CellKey{X: 0, Y: 0}, model.CellKey{X: 3, Y: 3})
	if !p.Exists {
		t.Fatal("open ground must be traversable on foot")
	}
	if p.Distance != 6 {
		t.Fatalf("expected manhattan-length walk of 6, got %v", p.Distance)
	}
}

func TestGridPathFailsClosed(t *testing.T) {
	g := corridorGrid(5)
	gp := NewGridPathFinder(g, DefaultPathCacheCapacity)

	t.Run("off grid", func(t *testing.T) {
		if p := gp.FindPath(model.CellKey{X: -1, Y: 1}, model.CellKey{X: 4, Y: 1}); p.Exists {
			t.Fatal("off-grid start must fail")
		}
	})
	t.Run("water endpoint", func(t *testing.T) {
		if p := gp.FindPath(model.CellKey{X: 0, Y: 0}, model.CellKey{X: 4, Y: 1}); p.Exists {
			t.Fatal("water start must fail")
		}
	})
}

func TestGridPathCacheDeterministic(t *testing.T) {
	g := corridorGrid(8)
	gp := NewGridPathFinder(g, DefaultPathCacheCapacity)
	start := model.CellKey{X: 0, Y: 1}
	end := model.CellKey{X: 7, Y: 1}

	first := gp.FindPath(start, end)
	if !first.Exists {
		t.Fatal("expected a corridor path")
	}
	if gp.CacheLen() != 1 {
		t.Fatalf("expected one cached entry, got %d", gp.CacheLen())
	}
	second := gp.FindPath(start, end)
	if !first.Equal(second) || first.Cost != second.Cost {
		t.Fatalf("cached result differs:\nfirst:  %v\nsecond: %v", first.Cells, second.Cells)
	}
}

func TestGridPathCacheInvalidation(t *testing.T) {
	g := corridorGrid(8)
	gp := NewGridPathFinder(g, DefaultPathCacheCapacity)
	start := model.CellKey{X: 0, Y: 1}
	end := model.CellKey{X: 7, Y: 1}

	if p := gp.FindPath(start, end); !p.Exists {
		t.Fatal("expected a corridor path before the edit")
	}

	// sever the only route, then invalidate as a road edit would
	g.SetTerrain(model.CellKey{X: 3, Y: 1}, model.TerrainWater)
	gp.ClearCache()
	if gp.CacheLen() != 0 {
		t.Fatalf("cache not cleared, %d entries left", gp.CacheLen())
	}

	if p := gp.FindPath(start, end); p.Exists {
		t.Fatal("severed corridor must yield no path after invalidation")
	}
}

func TestGridPathCacheEviction(t *testing.T) {
	g := corridorGrid(8)
	gp := NewGridPathFinder(g, 2)
	start := model.CellKey{X: 0, Y: 1}

	for x := 5; x <= 7; x++ {
		if p := gp.FindPath(start, model.CellKey{X: x, Y: 1}); !p.Exists {
			t.Fatalf("expected a path to x=%d", x)
		}
	}
	if gp.CacheLen() != 2 {
		t.Fatalf("capacity 2 cache holds %d entries", gp.CacheLen())
	}
}
