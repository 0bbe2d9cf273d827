package wizard

import "sync"

// Store keeps one Controller per session id.
type Store struct {
	limits IntakeLimits

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewStore creates an empty Store whose controllers use limits.
func NewStore(limits IntakeLimits) *Store {
	return &Store{limits: limits, controllers: make(map[string]*Controller)}
}

// Get returns the controller for sid, starting a new run on first use.
func (s *Store) Get(sid string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[sid]
	if !ok {
		c = NewController(s.limits)
		s.controllers[sid] = c
	}
	return c
}

// Reset discards the run for sid.
func (s *Store) Reset(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.controllers, sid)
}

// Move hands the run for from over to the session id to, replacing any run
// already held by to.
func (s *Store) Move(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[from]
	if !ok {
		return
	}
	delete(s.controllers, from)
	s.controllers[to] = c
}

// Len returns the number of active runs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controllers)
}
