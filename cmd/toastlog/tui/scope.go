package tui

import (
	"sync"

	"github.com/tuanbt/toastlog/internal/intercept"
)

// RegionScope binds a passive interception session to the inbox panel:
// opening the panel activates a session and closing it releases the
// session. It is shared by pointer so the program owner can Close it after
// the event loop returns, whatever way it returned.
type RegionScope struct {
	patcher *intercept.Patcher

	mu      sync.Mutex
	session *intercept.Session
}

// NewRegionScope creates a scope. A nil patcher makes every call a no-op.
func NewRegionScope(patcher *intercept.Patcher) *RegionScope {
	return &RegionScope{patcher: patcher}
}

// Open activates a session unless one is already held.
func (r *RegionScope) Open() {
	if r == nil || r.patcher == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		r.session = r.patcher.Activate()
	}
}

// Close releases the held session, if any.
func (r *RegionScope) Close() {
	if r == nil {
		return
	}

	r.mu.Lock()
	session := r.session
	r.session = nil
	r.mu.Unlock()

	if session != nil {
		session.Release()
	}
}

// Active reports whether a session is held.
func (r *RegionScope) Active() bool {
	if r == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}
