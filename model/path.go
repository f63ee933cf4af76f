package model

import "math"

// Path is the result of a pathfinding query: an ordered cell sequence with the
// total traversal cost and the straight-line distance along it. A Path with
// Exists=false is a sentinel for "no route": empty cells, infinite cost. Route
// failure is an expected outcome, never an error.
type Path struct {
	Cells    []CellKey `json:"cells"`
	Cost     float64   `json:"cost"`
	Distance float64   `json:"distance"`
	Exists   bool      `json:"exists"`
}

// NoPath returns the sentinel for an unreachable route.
func NoPath() Path {
	return Path{Cost: math.Inf(1)}
}

// Len returns the number of cells on the path.
func (p Path) Len() int { return len(p.Cells) }

// Equal reports whether two paths visit the same cells with the same outcome.
func (p Path) Equal(other Path) bool {
	if p.Exists != other.Exists || len(p.Cells) != len(other.Cells) {
		return false
	}
	for i := range p.Cells {
		if p.Cells[i] != other.Cells[i] {
			return false
		}
	}
	return true
}
