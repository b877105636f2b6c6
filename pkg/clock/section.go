package clock

import "sync"

// Section runs code with the tick interrupt masked.
//
// On the board this is a disable/restore of the global interrupt flag around
// fn. The counter is wider than the machine's atomic access width, so every
// read and write of it goes through a Section.
type Section interface {
	Run(fn func())
}

// MutexSection is the host rendition of an interrupt-masked region: the
// goroutine standing in for the interrupt and the foreground loop exclude
// each other on mu.
type MutexSection struct {
	mu sync.Mutex
}

func (s *MutexSection) Run(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
