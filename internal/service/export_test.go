package service

import "github.com/maxviazov/football-manager-sim/internal/model"

// Mutate runs fn against the live world under the service lock.
func (s *WorldService) Mutate(fn func(w *model.World)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.world)
}
