package model

// VehicleType represents a category of vehicles with a fixed top speed.
type VehicleType struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	MaxSpeed float64 `json:"max_speed"` // cells per tick
}

// The built-in vehicle categories.
var (
	TypeCar   = &VehicleType{ID: 1, Name: "car", MaxSpeed: 1.0}
	TypeBus   = &VehicleType{ID: 2, Name: "bus", MaxSpeed: 0.7}
	TypeTruck = &VehicleType{ID: 3, Name: "truck", MaxSpeed: 0.5}
)

// VehicleState is the per-tick lifecycle state of a vehicle.
type VehicleState int

const (
	VehicleMoving VehicleState = iota
	VehicleStopped
	VehicleWaiting
	VehicleArrived
)

func (s VehicleState) String() string {
	switch s {
	case VehicleStopped:
		return "stopped"
	case VehicleWaiting:
		return "waiting"
	case VehicleArrived:
		return "arrived"
	default:
		return "moving"
	}
}

// Vehicle is an individual vehicle following a resolved path across the road
// network. It is created on spawn, mutated once per tick, and removed the
// tick after reaching VehicleArrived.
type Vehicle struct {
	ID        int          `json:"id"`
	Type      *VehicleType `json:"type"`
	Position  Vec2         `json:"position"`
	Target    Vec2         `json:"target"`
	Path      Path         `json:"path"`
	PathIndex int          `json:"path_index"`
	State     VehicleState `json:"state"`
	Speed     float64      `json:"speed"`

	TravelTicks int     `json:"travel_ticks"`
	WaitTicks   int     `json:"wait_ticks"`
	Distance    float64 `json:"distance"`
}

// MaxSpeed returns the top speed for the vehicle's type.
func (v *Vehicle) MaxSpeed() float64 {
	if v.Type == nil {
		return TypeCar.MaxSpeed
	}
	return v.Type.MaxSpeed
}

// SetSpeed updates the current speed, clamped to [0, MaxSpeed].
func (v *Vehicle) SetSpeed(s float64) {
	if s < 0 {
		s = 0
	}
	if max := v.MaxSpeed(); s > max {
		s = max
	}
	v.Speed = s
}

// CurrentCell returns the cell the vehicle currently occupies.
func (v *Vehicle) CurrentCell() CellKey { return v.Position.Key() }

// AtTarget reports whether the vehicle is within eps of its waypoint.
func (v *Vehicle) AtTarget(eps float64) bool {
	return v.Target.Sub(v.Position).Len() <= eps
}

// Heading returns the unit direction toward the current waypoint.
func (v *Vehicle) Heading() Vec2 { return v.Target.Sub(v.Position).Norm() }
