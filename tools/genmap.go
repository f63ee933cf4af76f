package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/syuhei176/city-simulator/model"
)

// genmap writes a grid JSON file usable with the simulator's -grid flag:
// a rectangular city with avenue rows, street columns, one highway, and a
// randomly placed lake.
func main() {
	width := flag.Int("width", 64, "grid width in cells")
	height := flag.Int("height", 64, "grid height in cells")
	seed := flag.Int64("seed", 1, "RNG seed for lake placement")
	out := flag.String("out", "city.json", "output path")
	flag.Parse()

	if *width < 16 || *height < 16 {
		fmt.Println("genmap: grid must be at least 16x16")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	grid := model.NewGrid(*width, *height)

	lakeW := 4 + rng.Intn(*width/8)
	lakeH := 4 + rng.Intn(*height/8)
	lakeX := rng.Intn(*width - lakeW)
	lakeY := rng.Intn(*height - lakeH)
	for y := lakeY; y < lakeY+lakeH; y++ {
		for x := lakeX; x < lakeX+lakeW; x++ {
			grid.SetTerrain(model.CellKey{X: x, Y: y}, model.TerrainWater)
		}
	}

	for y := 4; y < *height; y += 8 {
		for x := 0; x < *width; x++ {
			grid.SetRoad(model.CellKey{X: x, Y: y}, model.RoadAvenue)
		}
	}
	for x := 3; x < *width; x += 6 {
		for y := 0; y < *height; y++ {
			grid.SetRoad(model.CellKey{X: x, Y: y}, model.RoadStreet)
		}
	}
	for x := 0; x < *width; x++ {
		grid.SetRoad(model.CellKey{X: x, Y: *height / 2}, model.RoadHighway)
	}

	b, err := json.MarshalIndent(grid.Export(), "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(*out, b, 0644); err != nil {
		panic(err)
	}
	fmt.Printf("wrote %s: %dx%d, %d road cells\n", *out, *width, *height, grid.RoadCount())
}
