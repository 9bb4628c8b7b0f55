package core

import "sync"

// CloseSync lets a reader-side collaborator hold a cheap, frequently
// acquired read lock while a destroying owner blocks until every such
// reader has let go before tearing the shared resource down.
//
// There are two ways an owner can drain readers:
//
//   - LockForClose then, later, Close (the explicit two-step: readers are
//     blocked for the whole interval between the two calls, not just
//     during Close).
//   - Close alone (the implicit one-step: briefly blocks until any
//     in-flight readers release, then returns immediately).
//
// Calling LockForClose twice on the same CloseSync is a programming error
// and panics. CloseSync must not be copied after first use.
type CloseSync struct {
	mu           sync.RWMutex
	explicitMode bool
	closed       bool
}

// NewCloseSync returns a CloseSync ready for readers.
func NewCloseSync() *CloseSync {
	return &CloseSync{}
}

// ReadGuard represents one held read lock. Release must be called exactly
// once; calling it more than once is a no-op.
type ReadGuard struct {
	c        *CloseSync
	released bool
	mu       sync.Mutex
}

// Release drops the read lock. Safe to call more than once.
func (g *ReadGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return
	}
	g.released = true
	g.c.mu.RUnlock()
}

// TryReadLock attempts to acquire a read lock without blocking. It fails
// once LockForClose has been called, while Close is draining readers, and
// permanently once Close has returned — a CloseSync never reopens.
func (c *CloseSync) TryReadLock() (*ReadGuard, bool) {
	if !c.mu.TryRLock() {
		return nil, false
	}
	if c.closed {
		c.mu.RUnlock()
		return nil, false
	}
	return &ReadGuard{c: c}, true
}

// LockForClose marks the object as being destroyed, blocks new readers
// from this point forward, and waits until every reader already in
// flight has released its lock. The exclusive lock stays held until
// Close. Panics if called twice.
func (c *CloseSync) LockForClose() {
	if c.explicitMode {
		panic("corepool: CloseSync.LockForClose called more than once")
	}
	c.explicitMode = true
	c.mu.Lock()
}

// Close drains any in-flight readers and finalizes destruction. If
// LockForClose was called first, Close releases the lock it is still
// holding; otherwise Close blocks until outstanding readers release, then
// returns immediately. After Close returns, no further TryReadLock ever
// succeeds.
func (c *CloseSync) Close() {
	if c.explicitMode {
		c.closed = true
		c.mu.Unlock()
		return
	}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
