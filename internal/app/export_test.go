package app

// PendingTimers reports how many one-shot timers the session still holds.
func (s *Session) PendingTimers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}
