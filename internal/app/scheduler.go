package app

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled callback. Calling it more than once is safe.
type CancelFunc func()

// Scheduler runs callbacks later. Sessions never own a live timer; the service arms them here
// and keeps the cancel functions for disposal.
type Scheduler interface {
	Every(interval time.Duration, fn func()) CancelFunc
	After(delay time.Duration, fn func()) CancelFunc
}

// RealScheduler is backed by time.Ticker and time.AfterFunc.
type RealScheduler struct{}

func (RealScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (RealScheduler) After(delay time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

// ManualScheduler fires callbacks only when told to. Used by tests and by hosts that drive
// ticks from their own loop.
type ManualScheduler struct {
	mu      sync.Mutex
	nextID  int
	repeats map[int]func()
	pending map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		repeats: make(map[int]func()),
		pending: make(map[int]func()),
	}
}

func (m *ManualScheduler) Every(_ time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.repeats[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.repeats, id)
		m.mu.Unlock()
	}
}

func (m *ManualScheduler) After(_ time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.pending[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
	}
}

// Tick fires every repeating callback once.
func (m *ManualScheduler) Tick() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.repeats))
	for _, fn := range m.repeats {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// FirePending runs and clears every one-shot callback, returning how many ran.
func (m *ManualScheduler) FirePending() int {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.pending))
	for id, fn := range m.pending {
		fns = append(fns, fn)
		delete(m.pending, id)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Active reports the number of armed repeating and one-shot callbacks.
func (m *ManualScheduler) Active() (repeating, oneShot int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.repeats), len(m.pending)
}
