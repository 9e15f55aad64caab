package download

import (
	"sync"
	"sync/atomic"
)

// BusyGate admits at most one of the long-running operations that share it.
// The supervisor and the FFmpeg installer hold the same gate.
type BusyGate struct {
	held   atomic.Bool
	mu     sync.Mutex
	holder string
}

// NewBusyGate returns an open gate.
func NewBusyGate() *BusyGate {
	return &BusyGate{}
}

// TryAcquire takes the gate for holder. It returns false and the current
// holder's name when the gate is already taken.
func (g *BusyGate) TryAcquire(holder string) (bool, string) {
	if !g.held.CompareAndSwap(false, true) {
		return false, g.Holder()
	}
	g.mu.Lock()
	g.holder = holder
	g.mu.Unlock()
	return true, ""
}

// Release opens the gate. Releasing an open gate is a no-op.
func (g *BusyGate) Release() {
	g.mu.Lock()
	g.holder = ""
	g.mu.Unlock()
	g.held.Store(false)
}

// Busy reports whether the gate is held.
func (g *BusyGate) Busy() bool {
	return g.held.Load()
}

// Holder names the current holder, or "" when open.
func (g *BusyGate) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder
}
