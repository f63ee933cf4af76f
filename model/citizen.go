package model

import "sort"

// Citizen is the minimal slice of the population model the transportation
// core needs: an identity, a home, an optional workplace.
type Citizen struct {
	ID       int      `json:"id"`
	Home     *CellKey `json:"home,omitempty"`
	Work     *CellKey `json:"work,omitempty"`
	Employed bool     `json:"employed"`
}

// Population is the employment collaborator. It owns citizens and receives
// job revocations when commutes fail.
type Population struct {
	citizens map[int]*Citizen

	JobsRevoked int `json:"jobs_revoked"`
}

// NewPopulation returns an empty citizen directory.
func NewPopulation() *Population {
	return &Population{citizens: make(map[int]*Citizen)}
}

// Add registers a citizen, replacing any previous entry with the same ID.
func (p *Population) Add(c *Citizen) {
	if c == nil {
		return
	}
	p.citizens[c.ID] = c
}

// Get returns the citizen with the given ID or nil.
func (p *Population) Get(id int) *Citizen { return p.citizens[id] }

// Size returns the number of citizens.
func (p *Population) Size() int { return len(p.citizens) }

// Employ assigns a workplace to a citizen and marks them employed.
func (p *Population) Employ(id int, work CellKey) {
	c := p.citizens[id]
	if c == nil {
		return
	}
	w := work
	c.Work = &w
	c.Employed = true
}

// RevokeJob removes a citizen's employment. Called by the commute simulator
// exactly once per failed commuter per cycle.
func (p *Population) RevokeJob(id int) {
	c := p.citizens[id]
	if c == nil {
		return
	}
	c.Employed = false
	c.Work = nil
	p.JobsRevoked++
}

// EmployedCommuters returns the citizens eligible for a commute cycle: those
// employed with both a home and a workplace, in ascending ID order so cycles
// are reproducible.
func (p *Population) EmployedCommuters() []*Citizen {
	out := make([]*Citizen, 0, len(p.citizens))
	for _, c := range p.citizens {
		if c.Employed && c.Home != nil && c.Work != nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
