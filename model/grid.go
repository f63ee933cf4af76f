package model

// Grid is the fixed-size tile map shared by every simulator. It is mutated
// only from the outside (road placement, zoning); the transportation core
// reads cells by coordinate on every access and never holds deep copies.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	cells  []Cell
}

// NewGrid allocates a width x height grid of ground cells.
func NewGrid(width, height int) *Grid {
	g := &Grid{Width: width, Height: height}
	g.cells = make([]Cell, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = Cell{Key: CellKey{X: x, Y: y}}
		}
	}
	return g
}

// InBounds reports whether (x,y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// CellAt returns the cell at (x,y) or nil when off-grid.
func (g *Grid) CellAt(x, y int) *Cell {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.cells[y*g.Width+x]
}

// Cell returns the cell for a key, nil when off-grid.
func (g *Grid) Cell(k CellKey) *Cell { return g.CellAt(k.X, k.Y) }

// IsRoad reports whether (x,y) is a road cell.
func (g *Grid) IsRoad(x, y int) bool {
	c := g.CellAt(x, y)
	return c != nil && c.Road
}

// SetRoad marks a cell as road of the given type. Water cannot carry roads.
// Returns false when the edit was rejected.
func (g *Grid) SetRoad(k CellKey, t RoadType) bool {
	c := g.Cell(k)
	if c == nil || c.Terrain == TerrainWater {
		return false
	}
	c.Road = true
	c.RoadType = t
	return true
}

// ClearRoad removes the road flag from a cell.
func (g *Grid) ClearRoad(k CellKey) {
	if c := g.Cell(k); c != nil {
		c.Road = false
		c.TrafficDensity = 0
	}
}

// SetTerrain changes a cell's terrain; turning a road cell into water also
// removes the road.
func (g *Grid) SetTerrain(k CellKey, t Terrain) {
	c := g.Cell(k)
	if c == nil {
		return
	}
	c.Terrain = t
	if t == TerrainWater {
		c.Road = false
		c.TrafficDensity = 0
	}
}

// RoadCells returns every road cell in row-major order.
func (g *Grid) RoadCells() []*Cell {
	out := make([]*Cell, 0, 64)
	for i := range g.cells {
		if g.cells[i].Road {
			out = append(out, &g.cells[i])
		}
	}
	return out
}

// RoadCount returns how many cells are roads.
func (g *Grid) RoadCount() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Road {
			n++
		}
	}
	return n
}

// Neighbors4 returns the in-bounds cardinal neighbors of (x,y).
func (g *Grid) Neighbors4(x, y int) []*Cell {
	out := make([]*Cell, 0, 4)
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if c := g.CellAt(x+d[0], y+d[1]); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Neighbors8 returns the in-bounds 8-connected neighbors of (x,y).
func (g *Grid) Neighbors8(x, y int) []*Cell {
	out := make([]*Cell, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if c := g.CellAt(x+dx, y+dy); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}
