package duels

// HeldKeys returns the number of duel keys with a lock in use.
func (s *Service) HeldKeys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
