package testutil

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a fake timer source driven by Advance.
//
// It satisfies game.Scheduler. Callbacks run synchronously on the goroutine
// that calls Advance or FireNext, in due-time order; timers due at the same
// instant fire in the order they were armed.
//
// Thread-safety: AfterFunc and stop funcs are safe for concurrent use.
// Callbacks never run with the internal mutex held.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at  time.Duration
	seq int
	fn  func()
}

// NewManualScheduler creates a scheduler at virtual time 0.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc arms fn to run once the virtual clock reaches now+d.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{at: s.now + max(d, 0), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return func() { s.remove(t) }
}

func (s *ManualScheduler) remove(t *manualTimer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.timers {
		if p == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// next pops the earliest timer due at or before limit.
func (s *ManualScheduler) next(limit time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at != s.timers[j].at {
			return s.timers[i].at < s.timers[j].at
		}
		return s.timers[i].seq < s.timers[j].seq
	})
	t := s.timers[0]
	if t.at > limit {
		return nil
	}
	s.timers = s.timers[1:]
	s.now = t.at
	return t
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers armed by callbacks along the way. It returns how many
// fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	fired := 0
	for t := s.next(target); t != nil; t = s.next(target) {
		t.fn()
		fired++
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
	return fired
}

// FireNext jumps to the earliest pending timer and fires it. It returns
// false if nothing is pending.
func (s *ManualScheduler) FireNext() bool {
	t := s.next(time.Duration(1<<63 - 1))
	if t == nil {
		return false
	}
	t.fn()
	return true
}

// Now returns the virtual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of armed timers.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
