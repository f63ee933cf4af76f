package model

import (
	"fmt"
	"math"
)

// RoadType categorizes a road cell; it drives traversal cost and speed limits.
type RoadType int

const (
	RoadStreet RoadType = iota
	RoadAvenue
	RoadHighway
)

func (t RoadType) String() string {
	switch t {
	case RoadAvenue:
		return "avenue"
	case RoadHighway:
		return "highway"
	default:
		return "street"
	}
}

// Terrain distinguishes buildable ground from impassable water.
type Terrain int

const (
	TerrainGround Terrain = iota
	TerrainWater
)

// CellKey identifies a cell by its grid coordinates. It is used directly as a
// map key everywhere a cell or graph node needs an identity.
type CellKey struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (k CellKey) String() string { return fmt.Sprintf("%d,%d", k.X, k.Y) }

// Manhattan returns the taxicab distance to other.
func (k CellKey) Manhattan(other CellKey) float64 {
	return math.Abs(float64(k.X-other.X)) + math.Abs(float64(k.Y-other.Y))
}

// Euclid returns the straight-line distance to other.
func (k CellKey) Euclid(other CellKey) float64 {
	dx := float64(k.X - other.X)
	dy := float64(k.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Vec returns the cell center as a continuous position.
func (k CellKey) Vec() Vec2 { return Vec2{X: float64(k.X), Y: float64(k.Y)} }

// Vec2 is a continuous 2D position in grid units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 { return Vec2{X: v.X - other.X, Y: v.Y - other.Y} }

// Len returns the vector magnitude.
func (v Vec2) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// Dot returns the dot product with other.
func (v Vec2) Dot(other Vec2) float64 { return v.X*other.X + v.Y*other.Y }

// Norm returns the unit vector, or the zero vector if v has no length.
func (v Vec2) Norm() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Key rounds the position to the nearest cell, so a vehicle halfway along an
// edge attributes to the closer endpoint.
func (v Vec2) Key() CellKey {
	return CellKey{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

// Cell is one tile of the city grid. TrafficDensity is a 0..100 scalar written
// once per tick by the traffic simulator and read by both pathfinders.
type Cell struct {
	Key            CellKey  `json:"key"`
	Terrain        Terrain  `json:"terrain"`
	Road           bool     `json:"road"`
	RoadType       RoadType `json:"road_type"`
	TrafficDensity float64  `json:"traffic_density"`
}

// Walkable reports whether pedestrians may cross this cell.
func (c *Cell) Walkable() bool { return c.Terrain != TerrainWater }

// SetTrafficDensity clamps and stores a density value.
func (c *Cell) SetTrafficDensity(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	c.TrafficDensity = v
}
