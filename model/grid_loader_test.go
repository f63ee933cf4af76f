package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestGridRoundTrip(t *testing.T) {
	g := NewGrid(6, 4)
	g.SetTerrain(CellKey{X: 5, Y: 0}, TerrainWater)
	g.SetRoad(CellKey{X: 1, Y: 1}, RoadAvenue)
	g.SetRoad(CellKey{X: 2, Y: 1}, RoadAvenue)
	g.SetRoad(CellKey{X: 3, Y: 3}, RoadHighway)
	g.Cell(CellKey{X: 2, Y: 1}).SetTrafficDensity(42)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(g.Export()); err != nil {
		t.Fatal(err)
	}
	got, err := LoadGridFromReader(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Width != 6 || got.Height != 4 {
		t.Fatalf("dimensions %dx%d, want 6x4", got.Width, got.Height)
	}
	if got.Cell(CellKey{X: 5, Y: 0}).Walkable() {
		t.Fatal("water cell lost in round trip")
	}
	if c := got.Cell(CellKey{X: 2, Y: 1}); !c.Road || c.RoadType != RoadAvenue || c.TrafficDensity != 42 {
		t.Fatalf("road cell lost in round trip: %+v", c)
	}
	if got.RoadCount() != 3 {
		t.Fatalf("RoadCount = %d, want 3", got.RoadCount())
	}
}

func TestLoadGridRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not json":          "{",
		"zero dimensions":   `{"width":0,"height":5,"roads":[]}`,
		"road out of grid":  `{"width":3,"height":3,"roads":[{"x":7,"y":0,"road_type":0}]}`,
		"water out of grid": `{"width":3,"height":3,"water":[{"x":0,"y":9}],"roads":[]}`,
		"road on water":     `{"width":3,"height":3,"water":[{"x":1,"y":1}],"roads":[{"x":1,"y":1,"road_type":0}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadGridFromReader(strings.NewReader(body)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
