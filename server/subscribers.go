package server

import (
	"sync"

	"github.com/syuhei176/city-simulator/sim"
)

// subscriberSet tracks live SSE connections by ID.
type subscriberSet struct {
	mu   sync.Mutex
	subs map[string]chan sim.Event
}

func (s *subscriberSet) add(id string, ch chan sim.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[string]chan sim.Event)
	}
	s.subs[id] = ch
}

func (s *subscriberSet) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *subscriberSet) each(fn func(chan sim.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		fn(ch)
	}
}
