package model

// CommuterState tracks one citizen's trip through a daily commute cycle.
type CommuterState int

const (
	CommuterWaiting CommuterState = iota
	Commuting
	CommuterAtWork
	CommuterFailed
)

func (s CommuterState) String() string {
	switch s {
	case Commuting:
		return "commuting"
	case CommuterAtWork:
		return "at_work"
	case CommuterFailed:
		return "failed"
	default:
		return "waiting"
	}
}

// Commuter is a transient per-cycle entity representing one employed
// citizen's trip from home to work. Commuters are created fresh at the start
// of each daily cycle and discarded when the cycle ends; nothing persists
// across days.
type Commuter struct {
	CitizenID int           `json:"citizen_id"`
	Home      CellKey       `json:"home"`
	Work      CellKey       `json:"work"`
	State     CommuterState `json:"state"`
	Path      Path          `json:"path"`

	// Progress is a fractional index into Path.Cells; the integer part is the
	// segment the commuter is on, the fraction its position along it.
	Progress float64 `json:"progress"`
	Speed    float64 `json:"speed"` // path nodes per tick, set by the simulator
	Elapsed  int     `json:"elapsed_ticks"`
	Budget   int     `json:"max_commute_ticks"`
}

// Segment returns the directed path segment the commuter currently occupies,
// and false once it has passed the last one.
func (c *Commuter) Segment() (from, to CellKey, ok bool) {
	i := int(c.Progress)
	if i+1 >= len(c.Path.Cells) {
		return CellKey{}, CellKey{}, false
	}
	return c.Path.Cells[i], c.Path.Cells[i+1], true
}

// Arrived reports whether the fractional index has covered the whole path.
func (c *Commuter) Arrived() bool {
	return c.Path.Exists && c.Progress >= float64(len(c.Path.Cells)-1)
}
