package sim

// IDSource hands out sequential identifiers. The simulation root owns one and
// passes it to whichever component needs identities, so separate engine
// instances never share counter state and runs stay reproducible.
type IDSource struct {
	next int
}

// NewIDSource returns a source whose first Next() yields start+1.
func NewIDSource(start int) *IDSource {
	return &IDSource{next: start}
}

// Next returns a fresh identifier.
func (s *IDSource) Next() int {
	s.next++
	return s.next
}
