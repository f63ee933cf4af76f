package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// GridFile maps the layout of a persisted city grid: dimensions, water cells,
// and per-cell road class plus the traffic density at save time. This is
// everything needed to rebuild the road graph and resume simulation without
// replaying history.
type GridFile struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Water  []CellKey     `json:"water,omitempty"`
	Roads  []RoadCellRec `json:"roads"`
}

// RoadCellRec is one persisted road cell.
type RoadCellRec struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	RoadType RoadType `json:"road_type"`
	Density  float64  `json:"traffic_density,omitempty"`
}

// LoadGridFromReader parses a grid JSON file into a ready-to-use Grid.
// Out-of-bounds records are dropped with an error rather than silently
// truncated; densities are clamped to the valid range by the cell setter.
func LoadGridFromReader(r io.Reader) (*Grid, error) {
	dec := json.NewDecoder(r)
	var gf GridFile
	if err := dec.Decode(&gf); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	if gf.Width <= 0 || gf.Height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", gf.Width, gf.Height)
	}
	g := NewGrid(gf.Width, gf.Height)
	for _, k := range gf.Water {
		if !g.InBounds(k.X, k.Y) {
			return nil, fmt.Errorf("water cell %v out of bounds", k)
		}
		g.SetTerrain(k, TerrainWater)
	}
	for _, rec := range gf.Roads {
		k := CellKey{X: rec.X, Y: rec.Y}
		if !g.InBounds(k.X, k.Y) {
			return nil, fmt.Errorf("road cell %v out of bounds", k)
		}
		if !g.SetRoad(k, rec.RoadType) {
			return nil, fmt.Errorf("road cell %v rejected (water)", k)
		}
		g.Cell(k).SetTrafficDensity(rec.Density)
	}
	return g, nil
}

// Export captures the grid's persistent transportation state as a GridFile.
func (g *Grid) Export() GridFile {
	gf := GridFile{Width: g.Width, Height: g.Height}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.CellAt(x, y)
			if c.Terrain == TerrainWater {
				gf.Water = append(gf.Water, c.Key)
			}
			if c.Road {
				gf.Roads = append(gf.Roads, RoadCellRec{
					X: x, Y: y, RoadType: c.RoadType, Density: c.TrafficDensity,
				})
			}
		}
	}
	return gf
}
