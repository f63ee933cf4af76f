package sim

import (
	"math"
	"testing"

	"github.com/syuhei176/city-simulator/model"
)

type fakeDirectory struct {
	citizens []*model.Citizen
	revoked  map[int]int
}

func (f *fakeDirectory) EmployedCommuters() []*model.Citizen { return f.citizens }

func (f *fakeDirectory) RevokeJob(id int) {
	if f.revoked == nil {
		f.revoked = make(map[int]int)
	}
	f.revoked[id]++
}

func directoryOf(pairs ...[2]model.CellKey) *fakeDirectory {
	d := &fakeDirectory{}
	for i, p := range pairs {
		home, work := p[0], p[1]
		d.citizens = append(d.citizens, &model.Citizen{ID: i + 1, Home: &home, Work: &work, Employed: true})
	}
	return d
}

func newCommuteFixture(g *model.Grid, dir *fakeDirectory, cfg Config) *CommuteSimulator {
	cfg.CommuteInterval = 1
	return NewCommuteSimulator(g, NewGridPathFinder(g, cfg.PathCacheCapacity), dir, cfg)
}

func TestCommuteArrivalDeterministic(t *testing.T) {
	g := corridorGrid(5)
	dir := directoryOf([2]model.CellKey{{X: 0, Y: 1}, {X: 4, Y: 1}})
	cs := newCommuteFixture(g, dir, DefaultConfig())

	cs.Step() // interval elapses, cycle starts
	if cs.State() != CycleSimulating {
		t.Fatal("cycle did not start")
	}

	// 5 path nodes at 0.5 nodes per tick: arrival on tick 8 exactly
	var end *CommuteEndEvent
	for tick := 1; tick <= 8; tick++ {
		for _, ev := range cs.Step() {
			if e, ok := ev.(CommuteEndEvent); ok {
				end = &e
				if tick != 8 {
					t.Fatalf("cycle ended on tick %d, want 8", tick)
				}
			}
		}
	}
	if end == nil {
		t.Fatal("cycle never finished")
	}
	if end.AtWork != 1 || end.Failed != 0 || end.Ticks != 8 {
		t.Fatalf("unexpected cycle result: %+v", end)
	}
	c := cs.Commuters()[0]
	if c.State != model.CommuterAtWork || c.Elapsed != 8 {
		t.Fatalf("commuter state=%v elapsed=%d, want at-work after 8", c.State, c.Elapsed)
	}
	if len(dir.revoked) != 0 {
		t.Fatalf("successful commute revoked jobs: %v", dir.revoked)
	}
}

func TestCommuteBudgetEnforced(t *testing.T) {
	g := corridorGrid(12)
	dir := directoryOf([2]model.CellKey{{X: 0, Y: 1}, {X: 11, Y: 1}})
	cfg := DefaultConfig()
	cfg.CommuteBudget = 3
	cs := newCommuteFixture(g, dir, cfg)

	cs.Step() // start cycle
	for tick := 1; tick <= 3; tick++ {
		cs.Step()
		if got := cs.Commuters()[0].State; got != model.Commuting {
			t.Fatalf("tick %d within budget, state = %v", tick, got)
		}
	}
	// budget of 3 exceeded on tick 4
	events := cs.Step()
	c := cs.Commuters()[0]
	if c.State != model.CommuterFailed || c.Elapsed != 4 {
		t.Fatalf("commuter state=%v elapsed=%d, want failed at 4", c.State, c.Elapsed)
	}
	if cs.State() != CycleIdle {
		t.Fatal("cycle should finish once every commuter is terminal")
	}
	if dir.revoked[1] != 1 {
		t.Fatalf("job revoked %d times, want exactly once", dir.revoked[1])
	}
	sawRevoke := false
	for _, ev := range events {
		if _, ok := ev.(JobRevokedEvent); ok {
			sawRevoke = true
		}
	}
	if !sawRevoke {
		t.Fatal("no job-revoked event emitted")
	}
}

func TestCommuteNoPathFailsImmediately(t *testing.T) {
	g := corridorGrid(8)
	g.SetTerrain(model.CellKey{X: 4, Y: 1}, model.TerrainWater)
	dir := directoryOf([2]model.CellKey{{X: 0, Y: 1}, {X: 7, Y: 1}})
	cs := newCommuteFixture(g, dir, DefaultConfig())

	events := cs.Step()
	var start *CommuteStartEvent
	var end *CommuteEndEvent
	for _, ev := range events {
		switch e := ev.(type) {
		case CommuteStartEvent:
			start = &e
		case CommuteEndEvent:
			end = &e
		}
	}
	if start == nil || start.NoPath != 1 {
		t.Fatalf("expected one no-path commuter in start event, got %+v", start)
	}
	if end == nil || end.Failed != 1 || end.Ticks != 0 {
		t.Fatalf("unreachable work must fail without consuming ticks, got %+v", end)
	}
	if cs.State() != CycleIdle {
		t.Fatal("degenerate cycle must return to idle in the same step")
	}
	if dir.revoked[1] != 1 {
		t.Fatalf("job revoked %d times, want exactly once", dir.revoked[1])
	}
}

func TestCommuteCongestionStretchesTravelTime(t *testing.T) {
	g := corridorGrid(6)
	var pairs [][2]model.CellKey
	for i := 0; i < 12; i++ {
		pairs = append(pairs, [2]model.CellKey{{X: 0, Y: 1}, {X: 5, Y: 1}})
	}
	cs := newCommuteFixture(g, directoryOf(pairs...), DefaultConfig())

	cs.Step() // start cycle
	// 12 commuters share every directed edge, past the ceiling of 10, so each
	// moves at 0.5*0.4 = 0.2 nodes per tick: 5 segments take 25 ticks.
	var end *CommuteEndEvent
	for tick := 0; tick < 40 && end == nil; tick++ {
		for _, ev := range cs.Step() {
			if e, ok := ev.(CommuteEndEvent); ok {
				end = &e
			}
		}
	}
	if end == nil {
		t.Fatal("congested cycle never finished")
	}
	if end.Ticks != 25 {
		t.Fatalf("congested corridor took %d ticks, want 25", end.Ticks)
	}
	if end.AtWork != 12 {
		t.Fatalf("%d commuters arrived, want all 12", end.AtWork)
	}
}

func TestSlowdownCurve(t *testing.T) {
	cs := &CommuteSimulator{cfg: DefaultConfig()} // threshold 3, ceiling 10, cap 0.6

	cases := []struct {
		load int
		want float64
	}{
		{0, 1},
		{3, 1},
		{10, 0.4},
		{15, 0.4},
	}
	for _, tc := range cases {
		if got := cs.slowdown(tc.load); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("slowdown(%d) = %v, want %v", tc.load, got, tc.want)
		}
	}
	mid := cs.slowdown(6)
	if mid <= 0.4 || mid >= 1 {
		t.Errorf("slowdown between threshold and ceiling must interpolate, got %v", mid)
	}
}
